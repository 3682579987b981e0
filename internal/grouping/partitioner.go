// Package grouping splits a dataset slice into the distinct values of a
// grouping variable, binning numeric variables at quantile cut points.
package grouping

import (
	"fmt"
	"slices"
	"sort"

	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/domain/variable"
)

// Partitioner partitions dataset slices using the types and group
// percentiles of a catalog. It holds no per-call state.
type Partitioner struct {
	catalog *variable.Catalog
}

// NewPartitioner creates a partitioner reading metadata from catalog
func NewPartitioner(catalog *variable.Catalog) *Partitioner {
	return &Partitioner{catalog: catalog}
}

// Partition assigns every visible row of f to a value of the grouping
// variable. Numeric variables are cut into quantile bins computed on f
// itself, so nested slices get their own edges. Rows with a missing value
// stay unassigned.
func (p *Partitioner) Partition(f *dataset.Frame, name string) (*table.Assignment, table.GroupPartition, error) {
	if !f.Has(name) {
		return nil, table.GroupPartition{}, core.NewUnknownColumnError("grouping", name)
	}
	if p.catalog.TypeOf(name).Binned() {
		return p.partitionBins(f, name)
	}
	return p.partitionValues(f, name)
}

func (p *Partitioner) partitionValues(f *dataset.Frame, name string) (*table.Assignment, table.GroupPartition, error) {
	vals, err := f.Column(name)
	if err != nil {
		return nil, table.GroupPartition{}, err
	}
	assign := table.NewAssignment(len(vals))
	for i, v := range vals {
		if !v.IsMissing() {
			assign.Set(i, table.ValueOf(v))
		}
	}
	distinct, err := f.Distinct(name)
	if err != nil {
		return nil, table.GroupPartition{}, err
	}
	part := table.GroupPartition{Variable: name, Values: make([]table.GroupValue, len(distinct))}
	for i, v := range distinct {
		part.Values[i] = table.ValueOf(v)
	}
	slices.SortFunc(part.Values, table.CompareGroupValues)
	return assign, part, nil
}

func (p *Partitioner) partitionBins(f *dataset.Frame, name string) (*table.Assignment, table.GroupPartition, error) {
	pctiles := variable.DefaultPctiles
	if info, ok := p.catalog.Lookup(name); ok && len(info.GroupPctiles) > 0 {
		pctiles = info.GroupPctiles
	}
	vals, err := f.Column(name)
	if err != nil {
		return nil, table.GroupPartition{}, err
	}
	xs, err := f.Numeric(name)
	if err != nil {
		return nil, table.GroupPartition{}, err
	}
	assign := table.NewAssignment(len(vals))
	part := table.GroupPartition{Variable: name}
	if len(xs) == 0 {
		return assign, part, nil
	}

	bins := Bins(xs, pctiles)
	counts := make([]int, len(bins))
	for i, v := range vals {
		x, ok := v.Float()
		if !ok {
			continue
		}
		if b := findBin(bins, x); b >= 0 {
			assign.Set(i, table.BinOf(bins[b]))
			counts[b]++
		}
	}
	for b, iv := range bins {
		if counts[b] > 0 {
			part.Values = append(part.Values, table.BinOf(iv))
		}
	}
	slices.SortFunc(part.Values, table.CompareGroupValues)
	return assign, part, nil
}

// Bins returns the quantile bins of xs at pctiles. Edges use type 7
// quantiles; repeated edges collapse into one. Each bin is right-closed
// and the first is also left-closed so that together they cover
// [min(xs), max(xs)]. A constant sample yields the single bin [x, x].
func Bins(xs []float64, pctiles []float64) []table.Interval {
	if len(xs) == 0 {
		return nil
	}
	ps := append([]float64(nil), pctiles...)
	sort.Float64s(ps)
	raw := dataset.Quantiles(xs, ps)
	edges := make([]float64, 0, len(raw))
	for _, e := range raw {
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	if len(edges) == 1 {
		return []table.Interval{{Lo: edges[0], Hi: edges[0], ClosedLeft: true}}
	}
	bins := make([]table.Interval, 0, len(edges)-1)
	for i := 0; i+1 < len(edges); i++ {
		bins = append(bins, table.Interval{Lo: edges[i], Hi: edges[i+1], ClosedLeft: i == 0})
	}
	return bins
}

// findBin returns the index of the bin holding x, or -1 when x lies
// outside every bin (pctiles that do not span 0 to 1).
func findBin(bins []table.Interval, x float64) int {
	i := sort.Search(len(bins), func(i int) bool { return x <= bins[i].Hi })
	if i < len(bins) && bins[i].Contains(x) {
		return i
	}
	return -1
}

// Describe renders a partition for debug logs
func Describe(part table.GroupPartition) string {
	labels := make([]string, len(part.Values))
	for i, v := range part.Values {
		labels[i] = v.String()
	}
	return fmt.Sprintf("%s=%v", part.Variable, labels)
}
