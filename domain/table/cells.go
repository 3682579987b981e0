package table

import "autotable/domain/dataset"

// Cell is one computed table cell: a SummaryCell or an AnalysisCell
type Cell interface {
	isCell()
}

// PctileValue is one reported percentile of a numeric variable
type PctileValue struct {
	Pctile float64
	Value  float64
}

// Frequency is the share of non-missing observations taking a value
type Frequency struct {
	Value dataset.Value
	Share float64
}

// SummaryCell holds descriptive statistics of one variable in one
// subgroup. N is always set. Mean and Std are nil when they do not apply
// to the variable's type or cannot be computed. At most one of Percentiles
// and Frequencies is populated.
type SummaryCell struct {
	N           int
	Mean        *float64
	Std         *float64
	Percentiles []PctileValue
	Frequencies []Frequency
}

func (SummaryCell) isCell() {}

// AnalysisCell holds the estimate for one regressor in one subgroup. When
// Err is set the numeric fields are meaningless and must not be rendered.
type AnalysisCell struct {
	Coefficient float64
	StdError    float64
	TStat       float64
	PValue      float64
	Err         error
}

func (AnalysisCell) isCell() {}

// Failed reports whether estimation failed for this cell
func (c AnalysisCell) Failed() bool {
	return c.Err != nil
}
