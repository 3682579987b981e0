package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"1.5", Number(1.5)},
		{" 42 ", Number(42)},
		{"", Missing()},
		{"NA", Missing()},
		{"nan", Missing()},
		{"A", Text("A")},
		{"1e3", Number(1000)},
		{"inf", Text("inf")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.raw), "Parse(%q)", tt.raw)
	}
}

func TestValueFloat(t *testing.T) {
	f, ok := Text(" 2.5").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = Text("abc").Float()
	assert.False(t, ok)

	_, ok = Missing().Float()
	assert.False(t, ok)

	assert.True(t, Number(math.NaN()).IsMissing(), "NaN must not be stored as a number")
}

func TestCompareOrdersNumbersTextMissing(t *testing.T) {
	vals := []Value{Missing(), Text("b"), Number(2), Text("a"), Number(-1)}
	want := []Value{Number(-1), Number(2), Text("a"), Text("b"), Missing()}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			if Compare(vals[j], vals[i]) < 0 {
				vals[i], vals[j] = vals[j], vals[i]
			}
		}
	}
	assert.Equal(t, want, vals)
}

func TestFrameWhereIsAView(t *testing.T) {
	f, err := FromRecords([]string{"g", "x"}, [][]string{
		{"A", "1"}, {"A", "2"}, {"B", "3"}, {"B", ""},
	})
	require.NoError(t, err)
	require.Equal(t, 4, f.Len())

	sub := f.Where([]bool{false, true, true, true})
	assert.Equal(t, 3, sub.Len())
	assert.Equal(t, 4, f.Len(), "parent must be untouched")

	xs, err := sub.Numeric("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, xs)

	nested := sub.Where([]bool{false, true, false})
	assert.Equal(t, Text("B"), nested.At(0, "g"))
	assert.Equal(t, Number(3), nested.At(0, "x"))
}

func TestFrameDistinctSorted(t *testing.T) {
	f, err := FromRecords([]string{"g"}, [][]string{{"b"}, {"a"}, {""}, {"b"}, {"3"}})
	require.NoError(t, err)
	d, err := f.Distinct("g")
	require.NoError(t, err)
	assert.Equal(t, []Value{Number(3), Text("a"), Text("b")}, d)

	_, err = f.Distinct("missing")
	assert.Error(t, err)
}

func TestFrameWithColumnLeavesParent(t *testing.T) {
	f, err := FromRecords([]string{"x"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)

	g, err := f.WithColumn("_const", Constant(Number(1), f.Len()))
	require.NoError(t, err)
	assert.True(t, g.Has("_const"))
	assert.False(t, f.Has("_const"))

	_, err = g.WithColumn("_const", Constant(Number(1), g.Len()))
	assert.Error(t, err)
	_, err = f.WithColumn("short", Constant(Number(1), 1))
	assert.Error(t, err)
}

func TestNewRejectsRaggedAndDuplicateColumns(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]Value{{Number(1)}, {}})
	assert.Error(t, err)
	_, err = New([]string{"a", "a"}, [][]Value{{Number(1)}, {Number(2)}})
	assert.Error(t, err)
}

func TestQuantileType7(t *testing.T) {
	xs := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	got := Quantiles(xs, []float64{0, .25, .5, .75, 1})
	assert.InDeltaSlice(t, []float64{1, 3.25, 5.5, 7.75, 10}, got, 1e-12)

	assert.Equal(t, []float64{4}, Quantiles([]float64{4}, []float64{0.3}))
	assert.True(t, math.IsNaN(Quantiles(nil, []float64{0.5})[0]))
	assert.Equal(t, []float64{10, 9}, xs[:2], "input must not be reordered")
}
