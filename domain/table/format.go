package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// FailedText replaces the numbers of an analysis cell whose fit failed
	FailedText = "estimation failed"
	// NotAvailable stands in for a test statistic that cannot be computed
	NotAvailable = "n/a"
)

// exactFitSE is the standard error, relative to the coefficient, below
// which a fit is treated as exact and its test statistics as undefined
const exactFitSE = 1e-10

// Text renders the cell as multi-line sheet text. Absent statistics are
// left out; N always closes the text.
func (c SummaryCell) Text() string {
	var b strings.Builder
	if c.Mean != nil {
		fmt.Fprintf(&b, "%.2f \n", *c.Mean)
	}
	if c.Std != nil {
		fmt.Fprintf(&b, "(%.2f) \n", *c.Std)
	}
	for _, p := range c.Percentiles {
		fmt.Fprintf(&b, "p%s = %.2f \n", strconv.FormatFloat(p.Pctile, 'g', -1, 64), p.Value)
	}
	for _, f := range c.Frequencies {
		fmt.Fprintf(&b, "%s: %.2f \n", f.Value, f.Share)
	}
	fmt.Fprintf(&b, "N=%d", c.N)
	return b.String()
}

// Text renders coefficient, standard error, t and p on three lines. An
// exact fit has no meaningful t or p; both render as n/a.
func (c AnalysisCell) Text() string {
	if c.Failed() {
		return FailedText
	}
	if c.Exact() {
		return fmt.Sprintf("%.3f \n(%.3f) \nt = %s, p = %s", c.Coefficient, c.StdError, NotAvailable, NotAvailable)
	}
	return fmt.Sprintf("%.3f \n(%.3f) \nt = %.2f, p = %.3f", c.Coefficient, c.StdError, c.TStat, c.PValue)
}

// Exact reports whether the standard error vanished, leaving t and p
// undefined or dominated by rounding noise
func (c AnalysisCell) Exact() bool {
	if !isFinite(c.TStat) || !isFinite(c.PValue) {
		return true
	}
	return c.StdError <= exactFitSE*math.Max(1, math.Abs(c.Coefficient))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// CellText renders any cell; a nil cell renders empty
func CellText(c Cell) string {
	switch v := c.(type) {
	case SummaryCell:
		return v.Text()
	case AnalysisCell:
		return v.Text()
	}
	return ""
}
