package table

import "autotable/domain/dataset"

// Table is one generated table: a table-group value (or the pooled
// rollup), the rows it covers, the vertical partitions computed on those
// rows, and one result per configured block. It is frozen once the
// generator returns it.
type Table struct {
	Title     string
	Subtitle  string
	Worksheet string

	// TableGroup is empty for the pooled table
	TableGroup string
	TableValue GroupValue
	Pooled     bool

	Rows       *dataset.Frame
	VGroups    []string
	Partitions map[string]GroupPartition
	Blocks     []*BlockResult

	// Labels snapshots the display labels of every variable the table
	// shows, so renderers need no catalog.
	Labels map[string]string
}

// Label returns the display label of a variable, falling back to its name
func (t *Table) Label(name string) string {
	if l, ok := t.Labels[name]; ok && l != "" {
		return l
	}
	return name
}

// RowGroups returns the vgroups in layout order, ending with PooledGroup
func (t *Table) RowGroups() []string {
	return append(append([]string(nil), t.VGroups...), PooledGroup)
}

// GroupValues returns the values laid out for a vgroup, in order
func (t *Table) GroupValues(vgroup string) []GroupValue {
	if vgroup == PooledGroup {
		return []GroupValue{Pooled}
	}
	return t.Partitions[vgroup].Values
}
