// Package markdown renders generated tables as GitHub-style markdown, with
// an optional standalone HTML preview.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"autotable/domain/table"
	"autotable/internal/layout"
	"autotable/ports"
)

// Renderer writes markdown tables to an io.Writer
type Renderer struct {
	out io.Writer
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render writes every table, separated by blank lines
func (r *Renderer) Render(tables []*table.Table) error {
	for _, t := range tables {
		if _, err := io.WriteString(r.out, Table(t)); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
	}
	return nil
}

// Table renders one table. Rows follow the sheet layout; vgroup labels
// become bold rows and multi-line cells are joined with <br>.
func Table(t *table.Table) string {
	grid := layout.Assign(t, 0)
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n### %s\n\n", escape(t.Title), escape(t.Subtitle))

	header := []string{""}
	for _, res := range t.Blocks {
		for _, col := range res.Columns {
			header = append(header, escape(res.Title+": "+t.Label(col)))
		}
	}
	writeRow(&b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)

	current := ""
	for _, key := range grid.Order {
		if key.VGroup != current {
			current = key.VGroup
			row := make([]string, len(header))
			row[0] = "**" + escape(t.Label(current)) + "**"
			writeRow(&b, row)
		}
		row := []string{escape(key.Value.String())}
		for _, res := range t.Blocks {
			for _, col := range res.Columns {
				c, _ := res.Cell(key.VGroup, key.Value, col)
				row = append(row, escape(table.CellText(c)))
			}
		}
		writeRow(&b, row)
	}
	b.WriteString("\n")
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

var escaper = strings.NewReplacer("|", "\\|", " \n", "<br>", "\n", "<br>")

func escape(s string) string {
	return escaper.Replace(s)
}

// HTML converts rendered markdown into a complete HTML page
func HTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(md, p, renderer)
}

// RenderHTML renders tables straight to an HTML page
func RenderHTML(tables []*table.Table, title string) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf).Render(tables); err != nil {
		return nil, err
	}
	return HTML(buf.Bytes(), title), nil
}
