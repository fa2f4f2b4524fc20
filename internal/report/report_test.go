package report_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"trajmle/internal/mle"
	"trajmle/internal/report"
)

func TestBuild_FittedAndSignificance(t *testing.T) {
	H := mat.NewDense(3, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
	})
	theta := mat.NewVecDense(2, []float64{1.0, 10.0})
	cTheta := mat.NewDense(2, 2, []float64{
		0.01, 0,
		0, 25.0, // stderr 5, so the slope (10.0) is not significant: |10| equals 2*5, it is not strictly greater
	})

	res := mle.Result{Theta: theta, CTheta: cTheta, SigmaEta: 0.5, LnDetC: -1.2, POpt: []float64{0.3}}

	rep, err := report.Build(H, res, []string{"constant", "trend"})
	require.NoError(t, err)
	require.Len(t, rep.Parameters, 2)

	require.Equal(t, "constant", rep.Parameters[0].Name)
	require.InDelta(t, 0.1, rep.Parameters[0].StdError, 1e-9)
	require.True(t, rep.Parameters[0].Significant) // |1.0| > 2*0.1

	require.Equal(t, "trend", rep.Parameters[1].Name)
	require.InDelta(t, 5.0, rep.Parameters[1].StdError, 1e-9)
	require.False(t, rep.Parameters[1].Significant) // |10| is not > 2*5

	require.InDelta(t, 1.0, rep.Fitted.AtVec(0), 1e-9)
	require.InDelta(t, 11.0, rep.Fitted.AtVec(1), 1e-9)
	require.InDelta(t, 21.0, rep.Fitted.AtVec(2), 1e-9)

	require.Equal(t, 0.5, rep.SigmaEta)
	require.Equal(t, []float64{0.3}, rep.POpt)
}

func TestBuild_NameLengthMismatch(t *testing.T) {
	H := mat.NewDense(2, 1, []float64{1, 1})
	theta := mat.NewVecDense(1, []float64{1.0})
	cTheta := mat.NewDense(1, 1, []float64{0.1})
	res := mle.Result{Theta: theta, CTheta: cTheta, SigmaEta: 1.0}

	_, err := report.Build(H, res, []string{"a", "b"})
	require.Error(t, err)
}
