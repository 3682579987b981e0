// Package ols implements ports.Estimator with ordinary least squares on
// top of gonum. The design is factorised with a thin SVD, which doubles as
// the rank check.
package ols

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/ports"
)

// Estimator fits OLS models
type Estimator struct{}

// New creates an OLS estimator
func New() *Estimator {
	return &Estimator{}
}

var _ ports.Estimator = (*Estimator)(nil)

// Fit estimates the coefficients of req and their standard errors under
// the requested covariance type. nonrobust p-values use the t
// distribution with n-k degrees of freedom; the robust types use the
// normal.
func (e *Estimator) Fit(req ports.FitRequest) (*ports.FitResult, error) {
	n, k := len(req.Y), len(req.Names)
	if n == 0 {
		return nil, core.ErrEmptySubset
	}
	if k == 0 {
		return nil, core.NewEstimationError(core.ErrRankDeficient, "no regressors")
	}
	if len(req.X) != n {
		return nil, core.NewEstimationError(core.ErrMissingColumn, "design has %d rows, response has %d", len(req.X), n)
	}
	covType := req.CovType
	if covType == "" {
		covType = ports.CovNonRobust
	}
	if covType == ports.CovCluster && len(req.Groups) != n {
		return nil, core.NewEstimationError(core.ErrMissingColumn, "cluster groups have %d rows, response has %d", len(req.Groups), n)
	}
	if n < k {
		return nil, core.NewEstimationError(core.ErrRankDeficient, "%d observations for %d regressors", n, k)
	}

	x := mat.NewDense(n, k, nil)
	for i, row := range req.X {
		if len(row) != k {
			return nil, core.NewEstimationError(core.ErrMissingColumn, "row %d has %d values, want %d", i, len(row), k)
		}
		x.SetRow(i, row)
	}
	y := mat.NewVecDense(n, append([]float64(nil), req.Y...))

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return nil, core.NewEstimationError(core.ErrRankDeficient, "SVD did not converge")
	}
	s := svd.Values(nil)
	if r := rank(s, n, k); r < k {
		return nil, core.NewEstimationError(core.ErrRankDeficient, "rank %d < %d columns", r, k)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// beta = V S^-1 U'y
	var uty mat.VecDense
	uty.MulVec(u.T(), y)
	for i := 0; i < k; i++ {
		uty.SetVec(i, uty.AtVec(i)/s[i])
	}
	var beta mat.VecDense
	beta.MulVec(&v, &uty)

	var fitted, resid mat.VecDense
	fitted.MulVec(x, &beta)
	resid.SubVec(y, &fitted)

	// (X'X)^-1 = V S^-2 V'
	var vs mat.Dense
	vs.Apply(func(_, j int, val float64) float64 { return val / (s[j] * s[j]) }, &v)
	var bread mat.Dense
	bread.Mul(&vs, v.T())

	dfResid := n - k
	cov, err := covariance(covType, x, &resid, &bread, req.Groups, dfResid)
	if err != nil {
		return nil, err
	}

	res := &ports.FitResult{
		Names:     append([]string(nil), req.Names...),
		Params:    make([]float64, k),
		StdErrors: make([]float64, k),
		TValues:   make([]float64, k),
		PValues:   make([]float64, k),
		NObs:      n,
		DFResid:   dfResid,
		UseT:      covType == ports.CovNonRobust,
	}
	for j := 0; j < k; j++ {
		variance := cov.At(j, j)
		if variance < 0 || math.IsNaN(variance) {
			return nil, core.NewEstimationError(core.ErrSingularCov, "negative variance for %s", req.Names[j])
		}
		res.Params[j] = beta.AtVec(j)
		res.StdErrors[j] = math.Sqrt(variance)
		res.TValues[j] = res.Params[j] / res.StdErrors[j]
		res.PValues[j] = pValue(res.TValues[j], dfResid, res.UseT)
	}
	return res, nil
}

func rank(s []float64, n, k int) int {
	if len(s) == 0 || s[0] == 0 {
		return 0
	}
	tol := float64(max(n, k)) * s[0] * 2.220446049250313e-16
	r := 0
	for _, sv := range s {
		if sv > tol {
			r++
		}
	}
	return r
}

func covariance(covType ports.CovType, x *mat.Dense, resid *mat.VecDense, bread *mat.Dense, groups []dataset.Value, dfResid int) (*mat.Dense, error) {
	n, k := x.Dims()
	var cov mat.Dense
	switch covType {
	case ports.CovNonRobust:
		if dfResid <= 0 {
			return nil, core.NewEstimationError(core.ErrSingularCov, "no residual degrees of freedom")
		}
		sigma2 := mat.Dot(resid, resid) / float64(dfResid)
		cov.Scale(sigma2, bread)
		return &cov, nil

	case ports.CovHC0, ports.CovHC1:
		meat := mat.NewDense(k, k, nil)
		for i := 0; i < n; i++ {
			addOuter(meat, x.RawRowView(i), resid.AtVec(i)*resid.AtVec(i))
		}
		sandwich(&cov, bread, meat)
		if covType == ports.CovHC1 {
			if dfResid <= 0 {
				return nil, core.NewEstimationError(core.ErrSingularCov, "no residual degrees of freedom")
			}
			cov.Scale(float64(n)/float64(dfResid), &cov)
		}
		return &cov, nil

	case ports.CovCluster:
		scores := make(map[dataset.Value][]float64)
		order := make([]dataset.Value, 0)
		for i := 0; i < n; i++ {
			g := groups[i]
			sc, ok := scores[g]
			if !ok {
				sc = make([]float64, k)
				order = append(order, g)
			}
			row := x.RawRowView(i)
			for j := 0; j < k; j++ {
				sc[j] += row[j] * resid.AtVec(i)
			}
			scores[g] = sc
		}
		nGroups := len(order)
		if nGroups < 2 {
			return nil, core.NewEstimationError(core.ErrTooFewClusters, "%d cluster(s)", nGroups)
		}
		if dfResid <= 0 {
			return nil, core.NewEstimationError(core.ErrSingularCov, "no residual degrees of freedom")
		}
		meat := mat.NewDense(k, k, nil)
		for _, g := range order {
			addOuter(meat, scores[g], 1)
		}
		sandwich(&cov, bread, meat)
		g := float64(nGroups)
		correction := g / (g - 1) * float64(n-1) / float64(dfResid)
		cov.Scale(correction, &cov)
		return &cov, nil
	}
	return nil, core.NewEstimationError(core.ErrEstimation, "unknown covariance type %q", covType)
}

// addOuter adds w * a a' to m
func addOuter(m *mat.Dense, a []float64, w float64) {
	for i := range a {
		for j := range a {
			m.Set(i, j, m.At(i, j)+w*a[i]*a[j])
		}
	}
}

func sandwich(dst, bread, meat *mat.Dense) {
	var tmp mat.Dense
	tmp.Mul(bread, meat)
	dst.Mul(&tmp, bread)
}

func pValue(t float64, df int, useT bool) float64 {
	if math.IsNaN(t) {
		return math.NaN()
	}
	if useT {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
		return 2 * dist.Survival(math.Abs(t))
	}
	return 2 * distuv.UnitNormal.Survival(math.Abs(t))
}
