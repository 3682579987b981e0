package ports

import "autotable/domain/dataset"

// CovType selects how coefficient standard errors are computed
type CovType string

const (
	CovNonRobust CovType = "nonrobust"
	CovHC0       CovType = "HC0"
	CovHC1       CovType = "HC1"
	CovCluster   CovType = "cluster"
)

// Valid reports whether the estimator understands the covariance type
func (c CovType) Valid() bool {
	switch c {
	case CovNonRobust, CovHC0, CovHC1, CovCluster:
		return true
	}
	return false
}

// FitRequest is one least-squares problem. X is row-major with one column
// per name in Names. Groups holds the cluster label of every row and is
// only read for CovCluster.
type FitRequest struct {
	Y       []float64
	X       [][]float64
	Names   []string
	CovType CovType
	Groups  []dataset.Value
}

// FitResult holds per-regressor estimates in the order of FitRequest.Names
type FitResult struct {
	Names     []string
	Params    []float64
	StdErrors []float64
	TValues   []float64
	PValues   []float64
	NObs      int
	DFResid   int
	// UseT is true when p-values come from the t distribution rather than
	// the normal
	UseT bool
}

// Index returns the position of a regressor in the result
func (r *FitResult) Index(name string) (int, bool) {
	for i, n := range r.Names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Estimator fits a linear model. Failures wrap core.ErrEstimation.
type Estimator interface {
	Fit(req FitRequest) (*FitResult, error)
}
