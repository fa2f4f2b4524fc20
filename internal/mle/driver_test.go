package mle_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"trajmle/internal/covariance"
	"trajmle/internal/design"
	"trajmle/internal/gap"
	"trajmle/internal/mle"
	"trajmle/internal/solver"
	"trajmle/internal/testsynth"
)

func buildDriver(t *testing.T, x []float64, noiseModels []string, solverName solver.Name) *mle.Driver {
	t.Helper()

	m := len(x)
	epochs := make([]float64, m)
	for i := range epochs {
		epochs[i] = float64(i)
	}
	H, err := design.Build(1.0, nil, nil, epochs)
	require.NoError(t, err)

	gapInfo, err := gap.Build(x)
	require.NoError(t, err)

	cov, err := covariance.New(noiseModels)
	require.NoError(t, err)

	s, err := solver.Select(solverName, gapInfo.MissingCount, m)
	require.NoError(t, err)

	d, err := mle.New(x, H, gapInfo, cov, s)
	require.NoError(t, err)
	return d
}

// A pure trend-plus-white-noise series with a single White kernel has no
// noise hyperparameters to search (Nparam = 0): Estimate should reduce to a
// single OLS-equivalent solve and return an empty POpt.
func TestEstimate_WhiteOnly_NoGaps_ReducesToOLS(t *testing.T) {
	const m = 200
	trend := testsynth.CenteredTrend(m)
	noise := testsynth.WhiteNoise(m, 0.5, 1)
	x := make([]float64, m)
	for i := range x {
		x[i] = 3.0 + 0.02*trend[i] + noise[i]
	}

	d := buildDriver(t, x, []string{"White"}, solver.AmmarGragName)
	res, err := d.Estimate()
	require.NoError(t, err)
	require.Empty(t, res.POpt)
	require.Len(t, res.Warnings, 0)

	require.InDelta(t, 3.0, res.Theta.AtVec(0), 0.3)
	require.InDelta(t, 0.02, res.Theta.AtVec(1), 0.05)
	require.Greater(t, res.SigmaEta, 0.0)
	require.False(t, math.IsInf(res.LnDetC, 0))
}

// On a problem with no missing values, AmmarGrag and Fullcov must agree on
// theta and sigma_eta to a tight relative tolerance, since both implement
// the same generalized least squares problem over the same covariance.
func TestEstimate_SolverEquivalence_NoGaps(t *testing.T) {
	const m = 150
	trend := testsynth.CenteredTrend(m)
	noise := testsynth.WhiteNoise(m, 0.3, 7)
	x := make([]float64, m)
	for i := range x {
		x[i] = 1.5 + 0.01*trend[i] + noise[i]
	}

	dAG := buildDriver(t, x, []string{"White"}, solver.AmmarGragName)
	dFC := buildDriver(t, x, []string{"White"}, solver.FullcovName)

	resAG, err := dAG.Estimate()
	require.NoError(t, err)
	resFC, err := dFC.Estimate()
	require.NoError(t, err)

	for i := 0; i < resAG.Theta.Len(); i++ {
		require.InDelta(t, resFC.Theta.AtVec(i), resAG.Theta.AtVec(i), 1e-6*(1+abs(resFC.Theta.AtVec(i))))
	}
	require.InDelta(t, resFC.SigmaEta, resAG.SigmaEta, 1e-6*(1+resFC.SigmaEta))
	require.InDelta(t, resFC.LnDetC, resAG.LnDetC, 1e-6*(1+abs(resFC.LnDetC)))
}

// With a substantial gap fraction, AmmarGrag's missing-data correction and
// Fullcov's row/column deletion must still agree, since they solve the same
// reduced generalized least squares problem by different routes.
func TestEstimate_SolverEquivalence_WithGaps(t *testing.T) {
	const m = 150
	trend := testsynth.CenteredTrend(m)
	noise := testsynth.WhiteNoise(m, 0.3, 11)
	x := make([]float64, m)
	for i := range x {
		x[i] = -2.0 + 0.015*trend[i] + noise[i]
	}
	x = testsynth.WithMissing(x, 0.1)

	dAG := buildDriver(t, x, []string{"White"}, solver.AmmarGragName)
	dFC := buildDriver(t, x, []string{"White"}, solver.FullcovName)

	resAG, err := dAG.Estimate()
	require.NoError(t, err)
	resFC, err := dFC.Estimate()
	require.NoError(t, err)

	for i := 0; i < resAG.Theta.Len(); i++ {
		require.InDelta(t, resFC.Theta.AtVec(i), resAG.Theta.AtVec(i), 1e-5*(1+abs(resFC.Theta.AtVec(i))))
	}
	require.InDelta(t, resFC.SigmaEta, resAG.SigmaEta, 1e-5*(1+resFC.SigmaEta))
}

// A White+Powerlaw mixture has nontrivial hyperparameters; Estimate must
// converge (or at least report a warning rather than error) and produce a
// finite, sane result.
func TestEstimate_Mixture_ConvergesOrWarns(t *testing.T) {
	const m = 120
	trend := testsynth.CenteredTrend(m)
	white := testsynth.WhiteNoise(m, 0.2, 3)
	colored := testsynth.PowerlawNoise(m, 0.6, 0.2, 5)
	x := make([]float64, m)
	for i := range x {
		x[i] = 0.5 + 0.01*trend[i] + white[i] + colored[i]
	}

	d := buildDriver(t, x, []string{"White", "Powerlaw"}, solver.AmmarGragName)
	res, err := d.Estimate()
	require.NoError(t, err)
	require.Len(t, res.POpt, 2) // one mixture weight + one Powerlaw kappa

	require.False(t, mat.Norm(res.Theta, 2) == 0)
	require.Greater(t, res.SigmaEta, 0.0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
