package blocks

import (
	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/domain/variable"
	"autotable/internal"
	"autotable/ports"
)

const (
	// DefaultAnalysisTitle is used when an analysis spec has no title
	DefaultAnalysisTitle = "Least Squares Regression"

	// ConstColumn is the all-ones column added for intercepts
	ConstColumn = "_const"
	// ConstLabel is the display label of ConstColumn
	ConstLabel = "Constant"

	// GroupsKwd is the covariance keyword naming the cluster column
	GroupsKwd = "groups"
)

// AnalysisSpec configures a regression block. Only Regressors are shown
// as columns; Controls enter the model but are not reported.
type AnalysisSpec struct {
	Title      string
	Y          string
	Regressors []string
	Controls   []string
	CovType    ports.CovType
	CovKwds    map[string]string
	Const      bool
}

// Design returns the model's regressors: Regressors, then Controls, then
// ConstColumn when requested. Duplicates are kept once.
func (s AnalysisSpec) Design() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(s.Regressors)+len(s.Controls)+1)
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(s.Regressors...)
	add(s.Controls...)
	if s.Const {
		add(ConstColumn)
	}
	return out
}

// ClusterColumn returns the column holding cluster labels, if any
func (s AnalysisSpec) ClusterColumn() (string, bool) {
	if s.CovType != ports.CovCluster {
		return "", false
	}
	g, ok := s.CovKwds[GroupsKwd]
	return g, ok && g != ""
}

// Analysis fits one regression per subgroup through an Estimator
type Analysis struct {
	spec      AnalysisSpec
	design    []string
	estimator ports.Estimator
	logger    *internal.Logger
}

var _ table.Block = (*Analysis)(nil)

// NewAnalysis creates an analysis block. The spec is copied.
func NewAnalysis(spec AnalysisSpec, estimator ports.Estimator, logger *internal.Logger) *Analysis {
	if spec.Title == "" {
		spec.Title = DefaultAnalysisTitle
	}
	if spec.CovType == "" {
		spec.CovType = ports.CovNonRobust
	}
	spec.Regressors = append([]string(nil), spec.Regressors...)
	spec.Controls = append([]string(nil), spec.Controls...)
	kwds := make(map[string]string, len(spec.CovKwds))
	for k, v := range spec.CovKwds {
		kwds[k] = v
	}
	spec.CovKwds = kwds
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Analysis{
		spec:      spec,
		design:    spec.Design(),
		estimator: estimator,
		logger:    logger.Named("analysis"),
	}
}

func (a *Analysis) Title() string         { return a.spec.Title }
func (a *Analysis) Kind() table.BlockKind { return table.KindAnalysis }
func (a *Analysis) Columns() []string     { return a.spec.Regressors }

// Spec returns a copy of the block's configuration
func (a *Analysis) Spec() AnalysisSpec { return a.spec }

// Requires lists y, the design and the cluster column
func (a *Analysis) Requires() []string {
	req := append([]string{a.spec.Y}, a.design...)
	if g, ok := a.spec.ClusterColumn(); ok {
		req = append(req, g)
	}
	return req
}

// UsesConst reports whether the block needs the intercept column
func (a *Analysis) UsesConst() bool {
	for _, n := range a.design {
		if n == ConstColumn {
			return true
		}
	}
	return false
}

// Compute fits the model on subset. A failed fit marks every regressor
// cell of the row with the error; it never aborts the table.
func (a *Analysis) Compute(subset *dataset.Frame, _ *variable.Catalog) table.Row {
	res, err := a.fit(subset)
	row := make(table.Row, len(a.spec.Regressors))
	if err != nil {
		if core.IsEstimationError(err) {
			a.logger.Warn("block %q: %v", a.spec.Title, err)
		} else {
			a.logger.Error("block %q: estimator failed: %v", a.spec.Title, err)
		}
		for _, name := range a.spec.Regressors {
			row[name] = table.AnalysisCell{Err: err}
		}
		return row
	}
	a.logger.Debug("block %q: %d observation(s), %d residual df", a.spec.Title, res.NObs, res.DFResid)
	for _, name := range a.spec.Regressors {
		j, ok := res.Index(name)
		if !ok {
			row[name] = table.AnalysisCell{Err: core.NewEstimationError(core.ErrMissingColumn, "%s not in fit", name)}
			continue
		}
		row[name] = table.AnalysisCell{
			Coefficient: res.Params[j],
			StdError:    res.StdErrors[j],
			TStat:       res.TValues[j],
			PValue:      res.PValues[j],
		}
	}
	return row
}

func (a *Analysis) fit(subset *dataset.Frame) (*ports.FitResult, error) {
	for _, name := range a.Requires() {
		if !subset.Has(name) {
			return nil, core.NewEstimationError(core.ErrMissingColumn, "%s", name)
		}
	}
	cluster, clustered := a.spec.ClusterColumn()
	if a.spec.CovType == ports.CovCluster && !clustered {
		return nil, core.NewEstimationError(core.ErrMissingColumn, "cluster covariance needs a %q keyword", GroupsKwd)
	}

	req := ports.FitRequest{Names: a.design, CovType: a.spec.CovType}
	for i := 0; i < subset.Len(); i++ {
		y, ok := subset.At(i, a.spec.Y).Float()
		if !ok {
			continue
		}
		x, ok := a.designRow(subset, i)
		if !ok {
			continue
		}
		if clustered {
			g := subset.At(i, cluster)
			if g.IsMissing() {
				continue
			}
			req.Groups = append(req.Groups, g)
		}
		req.Y = append(req.Y, y)
		req.X = append(req.X, x)
	}
	if len(req.Y) == 0 {
		return nil, core.ErrEmptySubset
	}
	return a.estimator.Fit(req)
}

// designRow returns row i of the design, or false when any value is
// missing or non-numeric
func (a *Analysis) designRow(f *dataset.Frame, i int) ([]float64, bool) {
	x := make([]float64, len(a.design))
	for j, name := range a.design {
		v, ok := f.At(i, name).Float()
		if !ok {
			return nil, false
		}
		x[j] = v
	}
	return x, true
}
