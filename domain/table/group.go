package table

import (
	"math"
	"strconv"

	"autotable/domain/dataset"
)

// PooledGroup names the synthetic vertical group evaluated without any
// vertical filter; it is always laid out after the configured vgroups.
const PooledGroup = "Pooled"

// PooledLabel is the row label of the single pooled group value
const PooledLabel = "---"

// Interval is a quantile bin. Bins are right-closed; the lowest bin of a
// partition is also closed on the left so the minimum is not lost.
type Interval struct {
	Lo, Hi     float64
	ClosedLeft bool
}

// Contains reports whether x falls in the bin
func (iv Interval) Contains(x float64) bool {
	if x > iv.Hi {
		return false
	}
	if iv.ClosedLeft {
		return x >= iv.Lo
	}
	return x > iv.Lo
}

// String renders the bin in interval notation, e.g. "(3.25, 5.5]"
func (iv Interval) String() string {
	open := "("
	if iv.ClosedLeft {
		open = "["
	}
	return open + formatEdge(iv.Lo) + ", " + formatEdge(iv.Hi) + "]"
}

func formatEdge(x float64) string {
	return strconv.FormatFloat(math.Round(x*1e6)/1e6, 'g', -1, 64)
}

// GroupValue is one distinct value of a grouping variable: a raw observed
// value, a quantile bin, or the pooled sentinel. It is comparable and keys
// the result maps.
type GroupValue struct {
	Value  dataset.Value
	Bin    Interval
	Binned bool
	Pooled bool
}

// Pooled is the sentinel value of the pooled group
var Pooled = GroupValue{Pooled: true}

// ValueOf wraps a raw observed value
func ValueOf(v dataset.Value) GroupValue {
	return GroupValue{Value: v}
}

// BinOf wraps a quantile bin
func BinOf(iv Interval) GroupValue {
	return GroupValue{Bin: iv, Binned: true}
}

// String returns the row label of the value
func (g GroupValue) String() string {
	switch {
	case g.Pooled:
		return PooledLabel
	case g.Binned:
		return g.Bin.String()
	}
	return g.Value.String()
}

// CompareGroupValues orders bins by lower edge and raw values with
// dataset.Compare; the pooled value sorts last. Partitions are sorted with
// it, and layout walks the stored partitions rather than sorting again.
func CompareGroupValues(a, b GroupValue) int {
	if a.Pooled != b.Pooled {
		if a.Pooled {
			return 1
		}
		return -1
	}
	if a.Binned && b.Binned {
		switch {
		case a.Bin.Lo < b.Bin.Lo:
			return -1
		case a.Bin.Lo > b.Bin.Lo:
			return 1
		}
		return 0
	}
	if a.Binned != b.Binned {
		if a.Binned {
			return -1
		}
		return 1
	}
	return dataset.Compare(a.Value, b.Value)
}

// GroupPartition is the ordered set of values a grouping variable takes on
// one dataset slice.
type GroupPartition struct {
	Variable string
	Values   []GroupValue
}

// Assignment maps each visible row of a slice to its group value; rows
// with a missing grouping value are unassigned.
type Assignment struct {
	values   []GroupValue
	assigned []bool
}

// NewAssignment allocates an assignment for n rows, all unassigned
func NewAssignment(n int) *Assignment {
	return &Assignment{values: make([]GroupValue, n), assigned: make([]bool, n)}
}

// Set assigns row i to g
func (a *Assignment) Set(i int, g GroupValue) {
	a.values[i] = g
	a.assigned[i] = true
}

// Mask returns a row mask selecting the rows assigned to g
func (a *Assignment) Mask(g GroupValue) []bool {
	mask := make([]bool, len(a.values))
	for i := range a.values {
		mask[i] = a.assigned[i] && a.values[i] == g
	}
	return mask
}

// Count returns the number of rows assigned to g
func (a *Assignment) Count(g GroupValue) int {
	n := 0
	for i := range a.values {
		if a.assigned[i] && a.values[i] == g {
			n++
		}
	}
	return n
}
