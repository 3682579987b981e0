package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/internal"
	"autotable/internal/blocks"
	"autotable/internal/generator"
)

func tables(t *testing.T) []*table.Table {
	t.Helper()
	f, err := dataset.FromRecords([]string{"g", "x"}, [][]string{{"A", "1"}, {"A", "2"}, {"B", "3"}, {"B", "4"}})
	require.NoError(t, err)
	gen, err := generator.New(f, nil, generator.Options{Title: "Demo", VGroups: []string{"g"}, Logger: internal.NewNopLogger()})
	require.NoError(t, err)
	require.NoError(t, gen.AddSummary(blocks.SummarySpec{Vars: []string{"x"}}))
	out, err := gen.Generate()
	require.NoError(t, err)
	return out
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(tables(t)))
	md := buf.String()

	assert.Contains(t, md, "## Demo")
	assert.Contains(t, md, "### Pooled")
	assert.Contains(t, md, "| Summary Statistics: x |")
	assert.Contains(t, md, "| **g** |")
	assert.Contains(t, md, "| A | 1.50<br>(0.71)<br>1: 0.50<br>2: 0.50<br>N=2 |")
	assert.Contains(t, md, "| --- | 2.50<br>(1.29)<br>")

	lines := strings.Split(strings.TrimSpace(md), "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "| ") {
			rows = append(rows, l)
		}
	}
	// header, separator, g label, A, B, Pooled label, ---
	assert.Len(t, rows, 7)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\|b<br>c`, escape("a|b \nc"))
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(tables(t), "Demo report")
	require.NoError(t, err)
	s := string(page)
	assert.Contains(t, s, "<title>Demo report</title>")
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<strong>g</strong>")
}
