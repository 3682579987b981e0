package grouping

import (
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/domain/variable"
)

func frameOf(t *testing.T, header []string, records ...[]string) *dataset.Frame {
	t.Helper()
	f, err := dataset.FromRecords(header, records)
	require.NoError(t, err)
	return f
}

func oneToTen(t *testing.T) *dataset.Frame {
	records := make([][]string, 10)
	for i := range records {
		records[i] = []string{strconv.Itoa(i + 1)}
	}
	return frameOf(t, []string{"x"}, records...)
}

func decorated(f *dataset.Frame) *variable.Catalog {
	c := variable.NewCatalog()
	c.Decorate(f)
	return c
}

// covered marks the rows that belong to some value of part
func covered(assign *table.Assignment, part table.GroupPartition, n int) []bool {
	rows := make([]bool, n)
	for _, g := range part.Values {
		for i, in := range assign.Mask(g) {
			rows[i] = rows[i] || in
		}
	}
	return rows
}

func TestPartition_QuartileBins(t *testing.T) {
	f := oneToTen(t)
	p := NewPartitioner(decorated(f))

	assign, part, err := p.Partition(f, "x")
	require.NoError(t, err)
	require.Len(t, part.Values, 4)

	wantEdges := []float64{1, 3.25, 5.5, 7.75, 10}
	wantSizes := []int{3, 2, 2, 3}
	for i, g := range part.Values {
		assert.True(t, g.Binned)
		assert.InDelta(t, wantEdges[i], g.Bin.Lo, 1e-12)
		assert.InDelta(t, wantEdges[i+1], g.Bin.Hi, 1e-12)
		assert.Equal(t, i == 0, g.Bin.ClosedLeft)
		assert.Equal(t, wantSizes[i], assign.Count(g), "bin %s", g)
	}
	assert.Equal(t, "[1, 3.25]", part.Values[0].String())
	assert.Equal(t, "(3.25, 5.5]", part.Values[1].String())
}

func TestPartition_BinsCoverEveryRowOnce(t *testing.T) {
	f := frameOf(t, []string{"x"},
		[]string{"3.2"}, []string{"-1"}, []string{"7"}, []string{"7"}, []string{"0.5"},
		[]string{"12"}, []string{"4.4"}, []string{"9"}, []string{"2"}, []string{"11"}, []string{"6"})
	c := decorated(f)
	require.Equal(t, variable.TypeNumeric, c.TypeOf("x"))
	assign, part, err := NewPartitioner(c).Partition(f, "x")
	require.NoError(t, err)

	total := 0
	for _, g := range part.Values {
		total += assign.Count(g)
	}
	assert.Equal(t, f.Len(), total)
	for i, ok := range covered(assign, part, f.Len()) {
		assert.True(t, ok, "row %d unassigned", i)
	}
}

func TestPartition_RawValuesSortedMissingExcluded(t *testing.T) {
	f := frameOf(t, []string{"g"},
		[]string{"B"}, []string{"A"}, []string{""}, []string{"B"}, []string{"NA"})
	assign, part, err := NewPartitioner(decorated(f)).Partition(f, "g")
	require.NoError(t, err)

	require.Len(t, part.Values, 2)
	assert.Equal(t, "A", part.Values[0].String())
	assert.Equal(t, "B", part.Values[1].String())
	assert.Equal(t, 2, assign.Count(part.Values[1]))

	assert.Equal(t, []bool{true, true, false, true, false}, covered(assign, part, f.Len()))
}

func TestPartition_ValuesInGroupOrder(t *testing.T) {
	mixed := frameOf(t, []string{"g"},
		[]string{"b"}, []string{"10"}, []string{"a"}, []string{"2"}, []string{""}, []string{"10"})
	c := decorated(mixed)
	require.Equal(t, variable.TypeCategory, c.TypeOf("g"))
	_, part, err := NewPartitioner(c).Partition(mixed, "g")
	require.NoError(t, err)
	got := make([]string, len(part.Values))
	for i, g := range part.Values {
		got[i] = g.String()
	}
	assert.Equal(t, []string{"2", "10", "a", "b"}, got)
	assert.True(t, slices.IsSortedFunc(part.Values, table.CompareGroupValues))

	f := oneToTen(t)
	_, bins, err := NewPartitioner(decorated(f)).Partition(f, "x")
	require.NoError(t, err)
	assert.True(t, slices.IsSortedFunc(bins.Values, table.CompareGroupValues))
}

func TestPartition_RecomputedPerSubset(t *testing.T) {
	f := oneToTen(t)
	p := NewPartitioner(decorated(f))

	upper := make([]bool, f.Len())
	for i := 5; i < f.Len(); i++ {
		upper[i] = true
	}
	_, part, err := p.Partition(f.Where(upper), "x")
	require.NoError(t, err)
	require.NotEmpty(t, part.Values)
	assert.Equal(t, 6.0, part.Values[0].Bin.Lo)
	assert.Equal(t, 10.0, part.Values[len(part.Values)-1].Bin.Hi)
}

func TestPartition_DuplicateEdgesCollapse(t *testing.T) {
	f := frameOf(t, []string{"x"},
		[]string{"0"}, []string{"0"}, []string{"0"}, []string{"0"}, []string{"0"},
		[]string{"0"}, []string{"0"}, []string{"1"}, []string{"2"}, []string{"3"}, []string{"4"})
	c := decorated(f)
	c.SetTypes(map[string]variable.Type{"x": variable.TypeNumeric})
	assign, part, err := NewPartitioner(c).Partition(f, "x")
	require.NoError(t, err)

	for i := 1; i < len(part.Values); i++ {
		assert.Less(t, part.Values[i-1].Bin.Hi, part.Values[i].Bin.Hi)
	}
	total := 0
	for _, g := range part.Values {
		assert.Positive(t, assign.Count(g))
		total += assign.Count(g)
	}
	assert.Equal(t, f.Len(), total)
}

func TestPartition_UnknownColumn(t *testing.T) {
	f := oneToTen(t)
	_, _, err := NewPartitioner(decorated(f)).Partition(f, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
	assert.True(t, core.IsConfigurationError(err))
}

func TestBins_ConstantSample(t *testing.T) {
	bins := Bins([]float64{5, 5, 5}, variable.DefaultPctiles)
	require.Len(t, bins, 1)
	assert.Equal(t, table.Interval{Lo: 5, Hi: 5, ClosedLeft: true}, bins[0])
	assert.True(t, bins[0].Contains(5))
}

func TestDeterministic(t *testing.T) {
	f := oneToTen(t)
	p := NewPartitioner(decorated(f))
	_, a, err := p.Partition(f, "x")
	require.NoError(t, err)
	_, b, err := p.Partition(f, "x")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
