package table

import (
	"autotable/domain/dataset"
	"autotable/domain/variable"
)

// BlockKind distinguishes summary and analysis blocks
type BlockKind string

const (
	KindSummary  BlockKind = "summary"
	KindAnalysis BlockKind = "analysis"
)

// Row is one block's cells for one subgroup, keyed by column variable
type Row map[string]Cell

// Block is a stateless unit of per-subgroup computation rendered as a set
// of adjacent columns. Results are never stored on the block; the
// generator keeps them in a BlockResult per table.
type Block interface {
	Title() string
	Kind() BlockKind
	// Columns lists the variables rendered as columns, in order
	Columns() []string
	// Requires lists every column the block reads from the dataset
	Requires() []string
	Compute(subset *dataset.Frame, catalog *variable.Catalog) Row
}

// BlockResult is the freshly allocated result of one block within one
// table: cells keyed by vgroup, then group value, then column.
type BlockResult struct {
	Title   string
	Kind    BlockKind
	Columns []string
	Cells   map[string]map[GroupValue]Row
}

// NewBlockResult allocates an empty result for b
func NewBlockResult(b Block) *BlockResult {
	return &BlockResult{
		Title:   b.Title(),
		Kind:    b.Kind(),
		Columns: append([]string(nil), b.Columns()...),
		Cells:   make(map[string]map[GroupValue]Row),
	}
}

// Set stores the row computed for one subgroup
func (r *BlockResult) Set(vgroup string, value GroupValue, row Row) {
	byValue, ok := r.Cells[vgroup]
	if !ok {
		byValue = make(map[GroupValue]Row)
		r.Cells[vgroup] = byValue
	}
	byValue[value] = row
}

// Cell returns the cell for one subgroup and column
func (r *BlockResult) Cell(vgroup string, value GroupValue, column string) (Cell, bool) {
	row, ok := r.Cells[vgroup][value]
	if !ok {
		return nil, false
	}
	c, ok := row[column]
	return c, ok
}

// Width is the number of columns the block occupies
func (r *BlockResult) Width() int {
	return len(r.Columns)
}
