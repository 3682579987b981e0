package dataset

import (
	"fmt"
	"sort"
)

// Frame is an immutable table of named columns. Filtering returns a view
// that shares column storage with its parent, so a subset is never a copy
// and a parent is never mutated by work on a child.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]Value
	rows  []int // positions into cols visible through this frame
}

// New builds a frame from equally long columns
func New(names []string, cols [][]Value) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(names), len(cols))
	}
	index := make(map[string]int, len(names))
	n := -1
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
		if n >= 0 && len(cols[i]) != n {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(cols[i]), n)
		}
		n = len(cols[i])
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return &Frame{
		names: append([]string(nil), names...),
		index: index,
		cols:  cols,
		rows:  rows,
	}, nil
}

// FromRecords parses raw string records (one slice per row) into a frame.
// Short records are padded with missing values.
func FromRecords(header []string, records [][]string) (*Frame, error) {
	cols := make([][]Value, len(header))
	for j := range cols {
		cols[j] = make([]Value, len(records))
	}
	for i, rec := range records {
		for j := range header {
			if j < len(rec) {
				cols[j][i] = Parse(rec[j])
			} else {
				cols[j][i] = Missing()
			}
		}
	}
	return New(header, cols)
}

// Len returns the number of visible rows
func (f *Frame) Len() int {
	return len(f.rows)
}

// Columns returns the column names in frame order
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether the frame has a column with this name
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// At returns the value of a column at a visible row
func (f *Frame) At(row int, name string) Value {
	j, ok := f.index[name]
	if !ok || row < 0 || row >= len(f.rows) {
		return Missing()
	}
	return f.cols[j][f.rows[row]]
}

// Column returns the visible values of a column
func (f *Frame) Column(name string) ([]Value, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]Value, len(f.rows))
	for i, r := range f.rows {
		out[i] = f.cols[j][r]
	}
	return out, nil
}

// Present returns the non-missing visible values of a column
func (f *Frame) Present(name string) ([]Value, error) {
	vals, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := vals[:0]
	for _, v := range vals {
		if !v.IsMissing() {
			out = append(out, v)
		}
	}
	return out, nil
}

// Numeric returns the visible values of a column that coerce to float,
// skipping missing and non-numeric cells.
func (f *Frame) Numeric(name string) ([]float64, error) {
	vals, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if x, ok := v.Float(); ok {
			out = append(out, x)
		}
	}
	return out, nil
}

// Distinct returns the sorted distinct non-missing values of a column
func (f *Frame) Distinct(name string) ([]Value, error) {
	vals, err := f.Present(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[Value]bool, len(vals))
	out := make([]Value, 0)
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(a, b int) bool { return Compare(out[a], out[b]) < 0 })
	return out, nil
}

// Where returns a view of the rows whose mask entry is true. The mask is
// indexed by visible row.
func (f *Frame) Where(mask []bool) *Frame {
	rows := make([]int, 0, len(f.rows))
	for i, r := range f.rows {
		if i < len(mask) && mask[i] {
			rows = append(rows, r)
		}
	}
	return &Frame{names: f.names, index: f.index, cols: f.cols, rows: rows}
}

// WithColumn returns a new frame holding the visible rows of f plus one
// extra column. f itself is left untouched.
func (f *Frame) WithColumn(name string, values []Value) (*Frame, error) {
	if f.Has(name) {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	if len(values) != len(f.rows) {
		return nil, fmt.Errorf("column %q has %d rows, frame has %d", name, len(values), len(f.rows))
	}
	names := append(f.Columns(), name)
	cols := make([][]Value, 0, len(names))
	for _, n := range f.names {
		c, _ := f.Column(n)
		cols = append(cols, c)
	}
	cols = append(cols, append([]Value(nil), values...))
	return New(names, cols)
}

// Constant returns n copies of the same value, for WithColumn
func Constant(v Value, n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}
