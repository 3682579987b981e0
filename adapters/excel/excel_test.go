package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/internal"
	"autotable/internal/blocks"
	"autotable/internal/generator"
)

func generate(t *testing.T, worksheet string) []*table.Table {
	t.Helper()
	f, err := dataset.FromRecords([]string{"g", "x", "y"}, [][]string{
		{"A", "1", "0"}, {"A", "2", "0"}, {"B", "3", "1"}, {"B", "4", "1"},
	})
	require.NoError(t, err)
	gen, err := generator.New(f, nil, generator.Options{
		Title:     "Demo",
		Worksheet: worksheet,
		VGroups:   []string{"g"},
		Logger:    internal.NewNopLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, gen.AddSummary(blocks.SummarySpec{Vars: []string{"x"}}))
	require.NoError(t, gen.AddAnalysis(blocks.AnalysisSpec{Y: "y", Regressors: []string{blocks.ConstColumn}, Const: true}))
	tables, err := gen.Generate()
	require.NoError(t, err)
	return tables
}

func TestWriter_RoundTrip(t *testing.T) {
	w, err := NewWriter(WriterConfig{FileName: "report", Title: "Demo"}, internal.NewNopLogger())
	require.NoError(t, err)
	defer w.Close()

	tables := generate(t, "")
	require.NoError(t, w.Render(tables))
	path, err := w.Save(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Main"}, f.GetSheetList())
	title, err := f.GetCellValue("Main", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Demo", title)
	subtitle, _ := f.GetCellValue("Main", "A2")
	assert.Equal(t, table.PooledGroup, subtitle)

	// blocks: summary in B, analysis in C
	blockTitle, _ := f.GetCellValue("Main", "B3")
	assert.Equal(t, blocks.DefaultSummaryTitle, blockTitle)
	colLabel, _ := f.GetCellValue("Main", "C4")
	assert.Equal(t, blocks.ConstLabel, colLabel)

	// rows: g label 5, A 6, B 7, blank 8, Pooled label 9, --- 10
	vgLabel, _ := f.GetCellValue("Main", "A5")
	assert.Equal(t, "g", vgLabel)
	a, _ := f.GetCellValue("Main", "B6")
	assert.Equal(t, "1.50 \n(0.71) \n1: 0.50 \n2: 0.50 \nN=2", a)

	pooledLabel, _ := f.GetCellValue("Main", "A10")
	assert.Equal(t, table.PooledLabel, pooledLabel)
	coef, _ := f.GetCellValue("Main", "C10")
	assert.Equal(t, "0.500 \n(0.289) \nt = 1.73, p = 0.182", coef)

	merged, err := f.GetMergeCells("Main")
	require.NoError(t, err)
	assert.NotEmpty(t, merged)

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, w.RunID().String(), props.Identifier)
	assert.Empty(t, props.Description)
}

func TestWriter_ConfigHashInProperties(t *testing.T) {
	hash := core.NewHash([]byte("reports"))
	w, err := NewWriter(WriterConfig{FileName: "hashed", ConfigHash: hash}, internal.NewNopLogger())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Render(generate(t, "")))
	path, err := w.Save(t.TempDir())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "config "+hash.Short(), props.Description)
}

func TestWriter_StacksTablesPerWorksheet(t *testing.T) {
	w, err := NewWriter(DefaultWriterConfig(), internal.NewNopLogger())
	require.NoError(t, err)
	defer w.Close()

	first, err := w.RenderTable(generate(t, "Main")[0])
	require.NoError(t, err)
	second, err := w.RenderTable(generate(t, "Main")[0])
	require.NoError(t, err)
	other, err := w.RenderTable(generate(t, "Other")[0])
	require.NoError(t, err)

	assert.Equal(t, 0, first.TitleRow)
	assert.Equal(t, first.EndRow, second.TitleRow)
	assert.Equal(t, 0, other.TitleRow)
	assert.ElementsMatch(t, []string{"Main", "Other"}, w.File().GetSheetList())
}

func TestDataReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("g, x\nA,1\nB,\nC,2.5\n"), 0o644))

	f, err := NewDataReader(ReaderConfig{}, internal.NewNopLogger()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "x"}, f.Columns())
	assert.Equal(t, 3, f.Len())
	assert.True(t, f.At(1, "x").IsMissing())
	v, ok := f.At(2, "x").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestDataReader_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"g", "x"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]interface{}{"A", 1}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A3", &[]interface{}{"B", 2.25}))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	f, err := NewDataReader(ReaderConfig{}, internal.NewNopLogger()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	v, ok := f.At(1, "x").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.25, v)
	assert.Equal(t, "A", f.At(0, "g").String())
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(ReaderConfig{}, internal.NewNopLogger()).Load(context.Background(), "nope.csv")
	assert.Error(t, err)
}
