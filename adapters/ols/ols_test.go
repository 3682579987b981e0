package ols

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/ports"
)

func TestFit_ConstantOnly(t *testing.T) {
	res, err := New().Fit(ports.FitRequest{
		Y:     []float64{0, 0, 1, 1},
		X:     [][]float64{{1}, {1}, {1}, {1}},
		Names: []string{"_const"},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Params[0], 1e-12)
	assert.InDelta(t, 0.288675, res.StdErrors[0], 1e-6)
	assert.InDelta(t, 1.732051, res.TValues[0], 1e-6)
	assert.InDelta(t, 0.1817, res.PValues[0], 1e-4)
	assert.Equal(t, 3, res.DFResid)
	assert.True(t, res.UseT)
}

func TestFit_RecoversSlope(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 200
	req := ports.FitRequest{Names: []string{"x", "_const"}}
	for i := 0; i < n; i++ {
		x := rng.Float64() * 10
		req.X = append(req.X, []float64{x, 1})
		req.Y = append(req.Y, 2*x+1+rng.NormFloat64()*0.1)
	}
	res, err := New().Fit(req)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Params[0], 0.01)
	assert.InDelta(t, 1.0, res.Params[1], 0.05)
	assert.Less(t, res.PValues[0], 1e-10)
	i, ok := res.Index("x")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestFit_RobustTypes(t *testing.T) {
	base := ports.FitRequest{
		Y:     []float64{0, 0, 1, 1},
		X:     [][]float64{{1}, {1}, {1}, {1}},
		Names: []string{"_const"},
	}

	hc0 := base
	hc0.CovType = ports.CovHC0
	res, err := New().Fit(hc0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.StdErrors[0], 1e-12)
	assert.False(t, res.UseT)
	assert.InDelta(t, 2*0.022750131948179, res.PValues[0], 1e-9)

	hc1 := base
	hc1.CovType = ports.CovHC1
	res, err = New().Fit(hc1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25*math.Sqrt(4.0/3.0), res.StdErrors[0], 1e-12)
}

func TestFit_Cluster(t *testing.T) {
	req := ports.FitRequest{
		Y:       []float64{0, 0, 1, 1},
		X:       [][]float64{{1}, {1}, {1}, {1}},
		Names:   []string{"_const"},
		CovType: ports.CovCluster,
		Groups:  []dataset.Value{dataset.Text("a"), dataset.Text("a"), dataset.Text("b"), dataset.Text("b")},
	}
	res, err := New().Fit(req)
	require.NoError(t, err)
	// scores are -1 and +1: meat 2, bread 1/4, correction 2 * 3/3
	assert.InDelta(t, 0.5, res.StdErrors[0], 1e-12)

	req.Groups = []dataset.Value{dataset.Text("a"), dataset.Text("a"), dataset.Text("a"), dataset.Text("a")}
	_, err = New().Fit(req)
	assert.ErrorIs(t, err, core.ErrTooFewClusters)
	assert.True(t, core.IsEstimationError(err))
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  ports.FitRequest
		want error
	}{
		{"empty", ports.FitRequest{Names: []string{"_const"}}, core.ErrEmptySubset},
		{
			"collinear",
			ports.FitRequest{
				Y:     []float64{1, 2, 3, 4},
				X:     [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}},
				Names: []string{"a", "b"},
			},
			core.ErrRankDeficient,
		},
		{
			"too few rows",
			ports.FitRequest{
				Y:     []float64{1},
				X:     [][]float64{{1, 2}},
				Names: []string{"a", "b"},
			},
			core.ErrRankDeficient,
		},
		{
			"no residual df",
			ports.FitRequest{
				Y:     []float64{1, 2},
				X:     [][]float64{{1, 0}, {1, 1}},
				Names: []string{"_const", "x"},
			},
			core.ErrSingularCov,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Fit(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, core.ErrEstimation)
		})
	}
}
