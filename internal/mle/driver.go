// Package mle wraps a noise covariance model and a least-squares solver
// behind the profile log-likelihood objective, and drives Nelder-Mead over
// the noise hyperparameters to produce maximum-likelihood trajectory
// estimates.
package mle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"trajmle/internal/covariance"
	"trajmle/internal/gap"
	"trajmle/internal/solver"
)

// simplexTol is the Nelder-Mead stopping tolerance on maximum coordinate
// spread across simplex vertices, per spec.md Sec.4.6.
const simplexTol = 1.0e-4

// maxIterations caps Nelder-Mead iterations; on exhaustion the driver falls
// back to the best vertex found and reports a convergence warning rather
// than failing.
const maxIterations = 2000

// initialGuess is the starting value for every hyperparameter, matching
// the source's param0 = [0.1, 0.1, ...].
const initialGuess = 0.1

// Driver holds the observation, design, and gap matrices for one
// estimation run together with the covariance model and solver it was
// constructed with. It is not safe for concurrent Estimate calls sharing
// one instance; two Drivers on two goroutines are independent.
type Driver struct {
	x       []float64
	H       *mat.Dense
	F       *mat.Dense
	m, k, n int
	cov     *covariance.Model
	solve   solver.Solver
}

// New validates the shapes of x and H against spec.md Sec.3's invariants
// (matching row counts, m > n) and builds a Driver. The gap matrix is taken
// from gapInfo as built by gap.Build and is not checked again here.
func New(x []float64, H *mat.Dense, gapInfo *gap.Info, cov *covariance.Model, s solver.Solver) (*Driver, error) {
	m := len(x)
	rowsH, n := H.Dims()
	if rowsH != m {
		return nil, inputShapeErrorf("design matrix has %d rows, observation vector has %d", rowsH, m)
	}
	if m <= n {
		return nil, inputShapeErrorf("need m > n, got m=%d n=%d", m, n)
	}
	if m == 0 {
		return nil, inputShapeErrorf("zero-length observation vector")
	}

	return &Driver{
		x:     x,
		H:     H,
		F:     gapInfo.F,
		m:     m,
		k:     gapInfo.MissingCount,
		n:     n,
		cov:   cov,
		solve: s,
	}, nil
}

// InputShapeError is raised at Driver construction time for malformed or
// mismatched inputs.
type InputShapeError struct{ msg string }

func (e *InputShapeError) Error() string { return "mle: input shape error: " + e.msg }

func inputShapeErrorf(format string, args ...any) error {
	return &InputShapeError{msg: fmt.Sprintf(format, args...)}
}

// objective evaluates -logL(p) + penalty, returning +Inf when the solver
// reports a numerical failure so Nelder-Mead treats that region as
// strictly worse than any feasible point.
func (d *Driver) objective(p []float64) float64 {
	penalty, clamped := d.cov.Penalty(p)
	t := d.cov.FirstRow(d.m, clamped)

	res, err := d.solve.Solve(t, d.H, d.x, d.F)
	if err != nil {
		return math.Inf(1)
	}

	N := float64(d.m - d.k)
	logL := -0.5 * (N*math.Log(2*math.Pi) + res.LnDetC + 2.0*N*math.Log(res.SigmaEta) + N)
	return -logL + penalty
}

// Estimate runs Nelder-Mead over the noise hyperparameters, then performs
// one final solve at the optimum to report theta, C_theta scaled by
// sigma_eta^2, ln|C|, sigma_eta, and the optimal hyperparameters.
func (d *Driver) Estimate() (Result, error) {
	nparam := d.cov.Nparam()
	p0 := make([]float64, nparam)
	for i := range p0 {
		p0[i] = initialGuess
	}

	opt := minimizeNelderMead(d.objective, p0, simplexTol, maxIterations)

	_, clamped := d.cov.Penalty(opt.X)
	t := d.cov.FirstRow(d.m, clamped)
	res, err := d.solve.Solve(t, d.H, d.x, d.F)
	if err != nil {
		return Result{}, err
	}

	var scaledCTheta mat.Dense
	scaledCTheta.Scale(res.SigmaEta*res.SigmaEta, res.CTheta)

	warnings := []string(nil)
	if !opt.Converged {
		warnings = append(warnings, "Nelder-Mead hit the iteration cap without meeting the simplex tolerance")
	}

	return Result{
		Theta:    res.Theta,
		CTheta:   &scaledCTheta,
		LnDetC:   res.LnDetC,
		SigmaEta: res.SigmaEta,
		POpt:     clamped,
		Warnings: warnings,
	}, nil
}

// Result is the output of Estimate.
type Result struct {
	Theta    *mat.VecDense
	CTheta   *mat.Dense // already scaled by sigma_eta^2
	LnDetC   float64
	SigmaEta float64
	POpt     []float64
	Warnings []string
}
