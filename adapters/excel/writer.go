package excel

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"autotable/domain/core"
	"autotable/domain/table"
	"autotable/internal"
	"autotable/internal/layout"
	"autotable/ports"
)

const defaultSheet = "Sheet1"

type styles struct {
	title    int
	subtitle int
	header   int
	label    int
	cell     int
}

// Writer renders tables into an xlsx workbook. Tables that share a
// worksheet are stacked top to bottom in render order.
type Writer struct {
	cfg     WriterConfig
	file    *excelize.File
	styles  styles
	nextRow map[string]int
	runID   core.RunID
	logger  *internal.Logger
}

var _ ports.Renderer = (*Writer)(nil)

// NewWriter creates a writer over a fresh workbook
func NewWriter(cfg WriterConfig, logger *internal.Logger) (*Writer, error) {
	defaults := DefaultWriterConfig()
	if cfg.FileName == "" {
		cfg.FileName = defaults.FileName
	}
	if cfg.ColumnWidth <= 0 {
		cfg.ColumnWidth = defaults.ColumnWidth
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = defaults.LineHeight
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	w := &Writer{
		cfg:     cfg,
		file:    excelize.NewFile(),
		nextRow: make(map[string]int),
		runID:   core.NewRunID(),
		logger:  logger.Named("excel"),
	}
	if err := w.initStyles(); err != nil {
		w.file.Close()
		return nil, err
	}
	return w, nil
}

// RunID identifies this workbook; it is written to the document properties
func (w *Writer) RunID() core.RunID {
	return w.runID
}

// File exposes the underlying workbook
func (w *Writer) File() *excelize.File {
	return w.file
}

func (w *Writer) initStyles() error {
	align := func(h string) *excelize.Alignment {
		return &excelize.Alignment{Horizontal: h, Vertical: "center", WrapText: true}
	}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&w.styles.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}, Alignment: align("center")}},
		{&w.styles.subtitle, &excelize.Style{Font: &excelize.Font{Italic: true}, Alignment: align("center")}},
		{&w.styles.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: align("center"),
			Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
		}},
		{&w.styles.label, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: align("left")}},
		{&w.styles.cell, &excelize.Style{Alignment: align("center")}},
	}
	for _, d := range defs {
		id, err := w.file.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return nil
}

// Render writes every table in order
func (w *Writer) Render(tables []*table.Table) error {
	for _, t := range tables {
		if _, err := w.RenderTable(t); err != nil {
			return err
		}
	}
	return nil
}

// RenderTable writes one table below whatever its worksheet already holds
// and returns the grid it was laid out on
func (w *Writer) RenderTable(t *table.Table) (*layout.Grid, error) {
	sheet, err := w.sheet(t.Worksheet)
	if err != nil {
		return nil, err
	}
	grid := layout.Assign(t, w.nextRow[sheet])
	if err := w.writeTable(sheet, t, grid); err != nil {
		return nil, fmt.Errorf("failed to write table %q to %s: %w", t.Subtitle, sheet, err)
	}
	w.nextRow[sheet] = grid.EndRow
	w.logger.Debug("wrote table %q to %s rows %d-%d", t.Subtitle, sheet, grid.TitleRow, grid.EndRow)
	return grid, nil
}

// sheet returns the worksheet for name, creating it on first use. The
// workbook's initial empty sheet is renamed rather than left behind.
func (w *Writer) sheet(name string) (string, error) {
	if name == "" {
		name = "Main"
	}
	if _, ok := w.nextRow[name]; ok {
		return name, nil
	}
	if len(w.nextRow) == 0 && name != defaultSheet {
		if err := w.file.SetSheetName(defaultSheet, name); err != nil {
			return "", fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if idx, _ := w.file.GetSheetIndex(name); idx < 0 {
		if _, err := w.file.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}
	w.nextRow[name] = 0
	return name, nil
}

func (w *Writer) writeTable(sheet string, t *table.Table, g *layout.Grid) error {
	lastCol := g.Width - 1
	if lastCol < layout.LabelColumn {
		lastCol = layout.LabelColumn
	}
	if err := w.writeSpan(sheet, g.TitleRow, layout.LabelColumn, lastCol, t.Title, w.styles.title); err != nil {
		return err
	}
	if err := w.writeSpan(sheet, g.SubtitleRow, layout.LabelColumn, lastCol, t.Subtitle, w.styles.subtitle); err != nil {
		return err
	}

	for i, b := range t.Blocks {
		start := g.BlockCols[i]
		end := start + b.Width() - 1
		if end < start {
			continue
		}
		if err := w.writeSpan(sheet, g.BlockTitleRow, start, end, b.Title, w.styles.header); err != nil {
			return err
		}
		for j, col := range b.Columns {
			if err := w.writeCell(sheet, g.ColumnLabelRow, start+j, t.Label(col), w.styles.header); err != nil {
				return err
			}
		}
	}

	for _, vg := range t.RowGroups() {
		if err := w.writeCell(sheet, g.LabelRows[vg], layout.LabelColumn, t.Label(vg), w.styles.label); err != nil {
			return err
		}
	}
	for _, key := range g.Order {
		row := g.Rows[key]
		if err := w.writeCell(sheet, row, layout.LabelColumn, key.Value.String(), w.styles.label); err != nil {
			return err
		}
		lines := 1
		for i, b := range t.Blocks {
			for j, col := range b.Columns {
				c, _ := b.Cell(key.VGroup, key.Value, col)
				text := table.CellText(c)
				if n := strings.Count(text, "\n") + 1; n > lines {
					lines = n
				}
				if err := w.writeCell(sheet, row, g.BlockCols[i]+j, text, w.styles.cell); err != nil {
					return err
				}
			}
		}
		if err := w.file.SetRowHeight(sheet, row+1, float64(lines)*w.cfg.LineHeight); err != nil {
			return err
		}
	}

	first, err := excelize.ColumnNumberToName(layout.LabelColumn + 1)
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(lastCol + 1)
	if err != nil {
		return err
	}
	return w.file.SetColWidth(sheet, first, last, w.cfg.ColumnWidth)
}

// writeCell writes to a zero-based (row, col)
func (w *Writer) writeCell(sheet string, row, col int, value string, style int) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, cell, cell, style)
}

// writeSpan writes value across columns from..to of a row, merging when
// the span is wider than one cell
func (w *Writer) writeSpan(sheet string, row, from, to int, value string, style int) error {
	if err := w.writeCell(sheet, row, from, value, style); err != nil {
		return err
	}
	if to <= from {
		return nil
	}
	start, _ := excelize.CoordinatesToCellName(from+1, row+1)
	end, err := excelize.CoordinatesToCellName(to+1, row+1)
	if err != nil {
		return err
	}
	if err := w.file.MergeCell(sheet, start, end); err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, start, end, style)
}

// Save writes the workbook into dir as FileName.xlsx and returns the path
func (w *Writer) Save(dir string) (string, error) {
	name := w.cfg.FileName
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}
	path := filepath.Join(dir, name)
	return path, w.SaveAs(path)
}

// SaveAs writes the workbook to path
func (w *Writer) SaveAs(path string) error {
	if err := w.file.SetDocProps(&excelize.DocProperties{
		Title:       w.cfg.Title,
		Creator:     "autotable",
		Identifier:  w.runID.String(),
		Description: w.description(),
		Created:     time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Info("saved %s (run %s)", path, w.runID)
	return nil
}

// description names the configuration the workbook was built from, when
// one was given
func (w *Writer) description() string {
	if w.cfg.ConfigHash.IsEmpty() {
		return ""
	}
	return "config " + w.cfg.ConfigHash.Short()
}

// Close releases the workbook
func (w *Writer) Close() error {
	return w.file.Close()
}
