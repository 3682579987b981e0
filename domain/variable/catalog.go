package variable

import (
	"autotable/domain/core"
	"autotable/domain/dataset"
)

// DefaultPctiles are the quartile cut points used when none are configured
var DefaultPctiles = []float64{0, .25, .5, .75, 1}

// Info is the metadata the report needs about one column
type Info struct {
	Label        string    `json:"label" yaml:"label"`
	Type         Type      `json:"type" yaml:"type"`
	GroupPctiles []float64 `json:"group_pctiles" yaml:"group_pctiles"`
	CellPctiles  []float64 `json:"cell_pctiles" yaml:"cell_pctiles"`
}

// Note records a heuristic decoration outcome worth surfacing, such as a
// type inferred from a column with no observations.
type Note struct {
	Variable string
	Type     Type
	Err      error
}

// Catalog holds per-column metadata for one generator. Entries are added
// or replaced, never removed. Each attribute is decorated independently so
// an explicit label does not stop the type from being inferred.
type Catalog struct {
	vars     map[string]*Info
	defaults []float64
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{vars: make(map[string]*Info), defaults: DefaultPctiles}
}

// SetDefaultPctiles replaces the cut points Decorate gives variables with
// no explicit percentiles
func (c *Catalog) SetDefaultPctiles(p []float64) error {
	if err := ValidatePctiles("default", p); err != nil {
		return err
	}
	c.defaults = append([]float64(nil), p...)
	return nil
}

func (c *Catalog) entry(name string) *Info {
	info, ok := c.vars[name]
	if !ok {
		info = &Info{}
		c.vars[name] = info
	}
	return info
}

// SetLabels sets display labels
func (c *Catalog) SetLabels(labels map[string]string) {
	for name, label := range labels {
		c.entry(name).Label = label
	}
}

// SetTypes overrides inferred types
func (c *Catalog) SetTypes(types map[string]Type) {
	for name, t := range types {
		c.entry(name).Type = t
	}
}

// SetGroupPctiles sets the cut points used to bin numeric grouping variables
func (c *Catalog) SetGroupPctiles(pctiles map[string][]float64) error {
	for name, p := range pctiles {
		if err := ValidatePctiles(name, p); err != nil {
			return err
		}
	}
	for name, p := range pctiles {
		c.entry(name).GroupPctiles = append([]float64(nil), p...)
	}
	return nil
}

// SetCellPctiles sets the percentiles reported inside numeric summary cells
func (c *Catalog) SetCellPctiles(pctiles map[string][]float64) error {
	for name, p := range pctiles {
		if err := ValidatePctiles(name, p); err != nil {
			return err
		}
	}
	for name, p := range pctiles {
		c.entry(name).CellPctiles = append([]float64(nil), p...)
	}
	return nil
}

// ValidatePctiles checks that a cut point list starts at 0, ends at 1 and
// never decreases.
func ValidatePctiles(name string, p []float64) error {
	if len(p) < 2 {
		return core.NewPctileError(name, "need at least two cut points")
	}
	if p[0] != 0 || p[len(p)-1] != 1 {
		return core.NewPctileError(name, "must start at 0 and end at 1")
	}
	for i := 1; i < len(p); i++ {
		if p[i] < p[i-1] {
			return core.NewPctileError(name, "must be non-decreasing")
		}
	}
	return nil
}

// Decorate fills in every attribute that is still unset for the frame's
// columns: label defaults to the column name, type is inferred from the
// column's values, and both percentile lists take the catalog default
// (quartiles unless SetDefaultPctiles was called).
// Attributes that are already set are left alone, so calling Decorate
// again after adding a derived column only classifies the new column.
func (c *Catalog) Decorate(f *dataset.Frame) []Note {
	var notes []Note
	for _, name := range f.Columns() {
		info := c.entry(name)
		if info.Label == "" {
			info.Label = name
		}
		if info.Type == "" {
			vals, _ := f.Column(name)
			t, err := InferType(vals)
			info.Type = t
			if err != nil {
				notes = append(notes, Note{Variable: name, Type: t, Err: err})
			}
		}
		if info.GroupPctiles == nil {
			info.GroupPctiles = append([]float64(nil), c.defaults...)
		}
		if info.CellPctiles == nil {
			info.CellPctiles = append([]float64(nil), c.defaults...)
		}
	}
	return notes
}

// Lookup returns a copy of a variable's metadata
func (c *Catalog) Lookup(name string) (Info, bool) {
	info, ok := c.vars[name]
	if !ok {
		return Info{}, false
	}
	out := *info
	out.GroupPctiles = append([]float64(nil), info.GroupPctiles...)
	out.CellPctiles = append([]float64(nil), info.CellPctiles...)
	return out, true
}

// Label returns the display label, falling back to the column name
func (c *Catalog) Label(name string) string {
	if info, ok := c.vars[name]; ok && info.Label != "" {
		return info.Label
	}
	return name
}

// TypeOf returns the variable's type, or "" when undecorated
func (c *Catalog) TypeOf(name string) Type {
	if info, ok := c.vars[name]; ok {
		return info.Type
	}
	return ""
}
