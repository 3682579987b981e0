package table

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"autotable/domain/dataset"
)

func ptr(f float64) *float64 { return &f }

func TestSummaryCellText(t *testing.T) {
	numeric := SummaryCell{
		N:    10,
		Mean: ptr(5.5),
		Std:  ptr(3.0277),
		Percentiles: []PctileValue{
			{Pctile: 0, Value: 1}, {Pctile: 0.25, Value: 3.25}, {Pctile: 1, Value: 10},
		},
	}
	assert.Equal(t, "5.50 \n(3.03) \np0 = 1.00 \np0.25 = 3.25 \np1 = 10.00 \nN=10", numeric.Text())

	category := SummaryCell{
		N:           4,
		Frequencies: []Frequency{{Value: dataset.Text("red"), Share: 0.75}, {Value: dataset.Text("blue"), Share: 0.25}},
	}
	assert.Equal(t, "red: 0.75 \nblue: 0.25 \nN=4", category.Text())

	assert.Equal(t, "N=0", SummaryCell{}.Text())
}

func TestAnalysisCellText(t *testing.T) {
	c := AnalysisCell{Coefficient: 0.5, StdError: 0.288675, TStat: 1.732051, PValue: 0.18169}
	assert.Equal(t, "0.500 \n(0.289) \nt = 1.73, p = 0.182", c.Text())

	failed := AnalysisCell{Err: errors.New("boom")}
	assert.Equal(t, FailedText, failed.Text())
	assert.Equal(t, FailedText, CellText(failed))
	assert.Equal(t, "", CellText(nil))
}

func TestAnalysisCellTextExactFit(t *testing.T) {
	tests := []struct {
		name string
		cell AnalysisCell
	}{
		{"nan", AnalysisCell{Coefficient: 0, StdError: 0, TStat: math.NaN(), PValue: math.NaN()}},
		{"inf", AnalysisCell{Coefficient: 2, StdError: 0, TStat: math.Inf(1), PValue: 0}},
		{"rounding noise", AnalysisCell{Coefficient: 2, StdError: 6.7e-16, TStat: 3002399751580330, PValue: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.cell.Exact())
			assert.Contains(t, tt.cell.Text(), "t = n/a, p = n/a")
		})
	}

	small := AnalysisCell{Coefficient: 1e-6, StdError: 1e-7, TStat: 10, PValue: 0.001}
	assert.False(t, small.Exact())
	assert.Equal(t, "0.000 \n(0.000) \nt = 10.00, p = 0.001", small.Text())
}

func TestIntervalContains(t *testing.T) {
	first := Interval{Lo: 1, Hi: 3.25, ClosedLeft: true}
	assert.True(t, first.Contains(1))
	assert.True(t, first.Contains(3.25))
	assert.False(t, first.Contains(3.26))

	next := Interval{Lo: 3.25, Hi: 5.5}
	assert.False(t, next.Contains(3.25))
	assert.True(t, next.Contains(5.5))
	assert.Equal(t, "(3.25, 5.5]", next.String())
}

func TestCompareGroupValues(t *testing.T) {
	a := BinOf(Interval{Lo: 1, Hi: 2, ClosedLeft: true})
	b := BinOf(Interval{Lo: 2, Hi: 3})
	assert.Negative(t, CompareGroupValues(a, b))
	assert.Positive(t, CompareGroupValues(Pooled, a))
	assert.Negative(t, CompareGroupValues(ValueOf(dataset.Number(2)), ValueOf(dataset.Text("a"))))
	assert.Equal(t, 0, CompareGroupValues(Pooled, Pooled))
	assert.Equal(t, PooledLabel, Pooled.String())
}

func TestAssignmentMask(t *testing.T) {
	a := NewAssignment(4)
	x, y := ValueOf(dataset.Text("x")), ValueOf(dataset.Text("y"))
	a.Set(0, x)
	a.Set(2, y)
	a.Set(3, x)

	assert.Equal(t, []bool{true, false, false, true}, a.Mask(x))
	assert.Equal(t, 1, a.Count(y))
	assert.Equal(t, []bool{false, false, true, false}, a.Mask(y))
}
