// Package blocks implements the statistics blocks a table is built from:
// descriptive summaries and least-squares regressions.
package blocks

import (
	"sort"

	"github.com/montanaflynn/stats"

	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/domain/variable"
	"autotable/internal"
)

// DefaultSummaryTitle is used when a summary spec has no title
const DefaultSummaryTitle = "Summary Statistics"

// SummarySpec configures a summary block
type SummarySpec struct {
	Title string
	Vars  []string
}

// Summary computes descriptive statistics per variable
type Summary struct {
	spec   SummarySpec
	logger *internal.Logger
}

var _ table.Block = (*Summary)(nil)

// NewSummary creates a summary block. The spec is copied.
func NewSummary(spec SummarySpec, logger *internal.Logger) *Summary {
	if spec.Title == "" {
		spec.Title = DefaultSummaryTitle
	}
	spec.Vars = append([]string(nil), spec.Vars...)
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Summary{spec: spec, logger: logger.Named("summary")}
}

func (s *Summary) Title() string         { return s.spec.Title }
func (s *Summary) Kind() table.BlockKind { return table.KindSummary }
func (s *Summary) Columns() []string     { return s.spec.Vars }
func (s *Summary) Requires() []string    { return s.spec.Vars }

// Compute returns one SummaryCell per variable. An empty subset yields
// cells with N=0 and nothing else.
func (s *Summary) Compute(subset *dataset.Frame, catalog *variable.Catalog) table.Row {
	if subset.Len() == 0 {
		s.logger.Warn("%v in block %q", core.ErrEmptySubgroup, s.spec.Title)
	}
	row := make(table.Row, len(s.spec.Vars))
	for _, name := range s.spec.Vars {
		row[name] = summarize(subset, name, catalog)
	}
	return row
}

func summarize(f *dataset.Frame, name string, catalog *variable.Catalog) table.SummaryCell {
	present, err := f.Present(name)
	if err != nil || len(present) == 0 {
		return table.SummaryCell{}
	}
	cell := table.SummaryCell{N: len(present)}
	typ := catalog.TypeOf(name)
	xs, _ := f.Numeric(name)

	if typ.HasMean() && len(xs) > 0 {
		if m, err := stats.Mean(xs); err == nil {
			cell.Mean = &m
		}
	}
	if typ.HasStd() && len(xs) > 1 {
		if sd, err := stats.StandardDeviationSample(xs); err == nil {
			cell.Std = &sd
		}
	}
	if typ.HasPercentiles() && len(xs) > 0 {
		pctiles := variable.DefaultPctiles
		if info, ok := catalog.Lookup(name); ok && len(info.CellPctiles) > 0 {
			pctiles = info.CellPctiles
		}
		qs := dataset.Quantiles(xs, pctiles)
		cell.Percentiles = make([]table.PctileValue, len(pctiles))
		for i, p := range pctiles {
			cell.Percentiles[i] = table.PctileValue{Pctile: p, Value: qs[i]}
		}
	}
	if typ.HasFrequencies() {
		cell.Frequencies = frequencies(present)
	}
	return cell
}

// frequencies returns value shares ordered by descending count, ties by
// ascending value
func frequencies(present []dataset.Value) []table.Frequency {
	counts := make(map[dataset.Value]int)
	for _, v := range present {
		counts[v]++
	}
	vals := make([]dataset.Value, 0, len(counts))
	for v := range counts {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(i, j int) bool {
		if counts[vals[i]] != counts[vals[j]] {
			return counts[vals[i]] > counts[vals[j]]
		}
		return dataset.Compare(vals[i], vals[j]) < 0
	})
	out := make([]table.Frequency, len(vals))
	n := float64(len(present))
	for i, v := range vals {
		out[i] = table.Frequency{Value: v, Share: float64(counts[v]) / n}
	}
	return out
}
