// Package layout assigns sheet coordinates to a generated table. It walks
// vgroups and values in exactly the order the generator filled them.
package layout

import "autotable/domain/table"

// LabelColumn holds row labels; blocks start to its right
const LabelColumn = 0

// RowKey addresses one result row of a table
type RowKey struct {
	VGroup string
	Value  table.GroupValue
}

// Grid is the coordinate map of one table. Rows are zero-based.
type Grid struct {
	TitleRow       int
	SubtitleRow    int
	BlockTitleRow  int
	ColumnLabelRow int

	// LabelRows holds the row carrying each vgroup's label
	LabelRows map[string]int
	// Rows holds the row of every (vgroup, value) pair
	Rows map[RowKey]int
	// Order lists the row keys top to bottom
	Order []RowKey

	// BlockCols holds each block's first column, in block order
	BlockCols []int
	// Width is the number of columns used, label column included
	Width int

	PooledRow int
	// EndRow is the first row after the table's trailing blank row
	EndRow int
}

// Assign lays out t starting at startRow
func Assign(t *table.Table, startRow int) *Grid {
	g := &Grid{
		TitleRow:       startRow,
		SubtitleRow:    startRow + 1,
		BlockTitleRow:  startRow + 2,
		ColumnLabelRow: startRow + 3,
		LabelRows:      make(map[string]int),
		Rows:           make(map[RowKey]int),
	}

	row := startRow + 4
	for _, vg := range t.RowGroups() {
		g.LabelRows[vg] = row
		row++
		for _, v := range t.GroupValues(vg) {
			key := RowKey{VGroup: vg, Value: v}
			g.Rows[key] = row
			g.Order = append(g.Order, key)
			row++
		}
		row++
	}
	g.PooledRow = g.Rows[RowKey{VGroup: table.PooledGroup, Value: table.Pooled}]
	g.EndRow = row

	col := LabelColumn + 1
	for _, b := range t.Blocks {
		g.BlockCols = append(g.BlockCols, col)
		col += b.Width()
	}
	g.Width = col
	return g
}

// Row returns the row of a (vgroup, value) pair
func (g *Grid) Row(vgroup string, value table.GroupValue) (int, bool) {
	r, ok := g.Rows[RowKey{VGroup: vgroup, Value: value}]
	return r, ok
}
