// Package solver implements the two least-squares back ends the MLE driver
// can use to turn a Toeplitz covariance row, a design matrix, an
// observation vector, and a gap matrix into trajectory parameter estimates:
// AmmarGrag (displacement-rank, FFT-based) and Fullcov (dense Cholesky on
// the reduced system).
package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNumericalFailure signals a non-positive-definite covariance, a
// Durbin-Levinson breakdown, or a failed Cholesky factorization at the
// current hyperparameter vector. Callers (the MLE objective) treat this as
// an infinite objective rather than a fatal error.
var ErrNumericalFailure = errors.New("solver: numerical failure")

// ErrUnknownSolver is raised at construction time for an unrecognized
// solver name.
var ErrUnknownSolver = errors.New("solver: unrecognized minimization method")

// Result is the output of a least-squares solve.
type Result struct {
	Theta    *mat.VecDense // n x 1 estimated trajectory parameters
	CTheta   *mat.Dense    // n x n, NOT yet scaled by sigma_eta^2
	LnDetC   float64       // log|C|
	SigmaEta float64       // driving-noise standard deviation
}

// Solver is the abstract contract both least-squares back ends implement.
type Solver interface {
	// Solve computes (theta, C_theta, ln|C|, sigma_eta) given the first row
	// t of the Toeplitz covariance, design matrix H, observation vector x
	// (NaN = missing), and gap matrix F.
	Solve(t []float64, H *mat.Dense, x []float64, F *mat.Dense) (Result, error)
}

// Name enumerates the recognized solver names for control-file parsing and
// the Default selection rule.
type Name string

const (
	AmmarGragName Name = "AmmarGrag"
	FullcovName   Name = "Fullcov"
	DefaultName   Name = "Default"
)

// Select resolves a solver by name. "Default" or "" picks Fullcov when the
// gap fraction k/m exceeds 0.5, else AmmarGrag, per spec.md Sec.4.7.
func Select(name Name, k, m int) (Solver, error) {
	switch name {
	case AmmarGragName:
		return &AmmarGrag{}, nil
	case FullcovName:
		return &Fullcov{}, nil
	case DefaultName, "":
		if m == 0 {
			return nil, fmt.Errorf("%w: m=0", ErrUnknownSolver)
		}
		if float64(k)/float64(m) > 0.5 {
			return &Fullcov{}, nil
		}
		return &AmmarGrag{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, name)
	}
}
