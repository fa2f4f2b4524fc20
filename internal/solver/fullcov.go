package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fullcov drops missing rows/columns from the dense Toeplitz covariance
// entirely and solves the resulting generalized least squares problem via
// Cholesky. Preferred when the gap fraction k/m is large, since its cost is
// driven by the reduced size (m-k) rather than by m.
type Fullcov struct{}

// Solve implements Solver.
//
// It builds the reduced (m-k)x(m-k) covariance Cm from t on the surviving
// row/column indices, Cholesky-factorizes it, and solves the generalized
// least squares system
//
//	theta   = (H'Cm^-1 H)^-1 H'Cm^-1 x
//	C_theta = (H'Cm^-1 H)^-1
//	ln|C|   = log det Cm
//	sigma_eta = sqrt( r'Cm^-1 r / (m-k) ),  r = x - H theta
//
// which is algebraically the same computation as the whitened form
// A = U^-1 H, y = U^-1 x (U the Cholesky factor) described in spec.md
// Sec.4.3, reformulated to use gonum's Cholesky.SolveTo directly instead of
// materializing U^-1.
func (Fullcov) Solve(t []float64, H *mat.Dense, x []float64, F *mat.Dense) (Result, error) {
	m, n := H.Dims()
	_, k := F.Dims()
	reduced := m - k

	survivors := make([]int, 0, reduced)
	for i := 0; i < m; i++ {
		if !math.IsNaN(x[i]) {
			survivors = append(survivors, i)
		}
	}

	xm := make([]float64, reduced)
	Hm := mat.NewDense(reduced, n, nil)
	cmData := make([]float64, reduced*reduced)
	for ii, ri := range survivors {
		xm[ii] = x[ri]
		for col := 0; col < n; col++ {
			Hm.Set(ii, col, H.At(ri, col))
		}
		for jj, rj := range survivors {
			d := ri - rj
			if d < 0 {
				d = -d
			}
			cmData[ii*reduced+jj] = t[d]
		}
	}
	Cm := mat.NewSymDense(reduced, cmData)

	var chol mat.Cholesky
	if ok := chol.Factorize(Cm); !ok {
		return Result{}, ErrNumericalFailure
	}

	var CinvH mat.Dense
	if err := chol.SolveTo(&CinvH, Hm); err != nil {
		return Result{}, ErrNumericalFailure
	}
	xmVec := mat.NewVecDense(reduced, xm)
	var Cinvx mat.VecDense
	if err := chol.SolveVecTo(&Cinvx, xmVec); err != nil {
		return Result{}, ErrNumericalFailure
	}

	var AtA mat.Dense
	AtA.Mul(Hm.T(), &CinvH)
	var Atx mat.VecDense
	Atx.MulVec(Hm.T(), &Cinvx)

	var CTheta mat.Dense
	if err := CTheta.Inverse(&AtA); err != nil {
		return Result{}, ErrNumericalFailure
	}
	var theta mat.VecDense
	theta.MulVec(&CTheta, &Atx)

	var Htheta mat.VecDense
	Htheta.MulVec(Hm, &theta)
	var resid mat.VecDense
	resid.SubVec(xmVec, &Htheta)

	var Cinvr mat.VecDense
	if err := chol.SolveVecTo(&Cinvr, &resid); err != nil {
		return Result{}, ErrNumericalFailure
	}
	quad := mat.Dot(&resid, &Cinvr)
	if quad < 0 {
		return Result{}, ErrNumericalFailure
	}
	sigmaEta := math.Sqrt(quad / float64(reduced))

	return Result{
		Theta:    &theta,
		CTheta:   &CTheta,
		LnDetC:   chol.LogDet(),
		SigmaEta: sigmaEta,
	}, nil
}
