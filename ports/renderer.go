package ports

import "autotable/domain/table"

// Renderer turns generated tables into an output document. Tables are
// rendered in the order given and stacked per worksheet.
type Renderer interface {
	Render(tables []*table.Table) error
}
