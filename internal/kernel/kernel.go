// Package kernel implements the noise-kernel variants that a CovarianceModel
// mixes together: White and Powerlaw. Each variant knows how to produce the
// first row of its own Toeplitz autocovariance and how to penalize and clamp
// its own shape parameters.
package kernel

import "math"

// Large is the penalty scale applied to out-of-range hyperparameters so the
// optimizer is pushed back toward the feasible region without a hard
// rejection.
const Large = 1.0e8

// powerlawEps bounds the Powerlaw spectral index away from the +/-1
// stationarity limit.
const powerlawEps = 1.0e-5

// Kernel is a single noise-model variant contributing to the mixture held by
// a CovarianceModel. Implementations are stateless; all per-call state is
// threaded through the shape parameter slice.
type Kernel interface {
	// Name identifies the kernel for control-file round-tripping.
	Name() string

	// NumShapeParams is the number of entries this kernel consumes from the
	// hyperparameter vector after the mixture-weight block.
	NumShapeParams() int

	// FirstRow returns the first row of the kernel's m x m Toeplitz
	// autocovariance matrix, given its slice of shape parameters.
	FirstRow(m int, shape []float64) []float64

	// Penalty returns the additive penalty for shape parameters that lie
	// outside the feasible region, and the corresponding shape slice with
	// offending entries clamped in place into a fresh slice (the caller's
	// slice is never mutated; see the CovarianceModel contract).
	Penalty(shape []float64) (penalty float64, clamped []float64)
}

// New resolves a kernel by name. It is the single place new variants get
// registered, per the "Dynamic kernel dispatch" design note: extending the
// kernel set adds one case here and one type implementing Kernel.
func New(name string) (Kernel, error) {
	switch name {
	case "White":
		return White{}, nil
	case "Powerlaw":
		return Powerlaw{}, nil
	default:
		return nil, &UnknownKernelError{Name: name}
	}
}

// UnknownKernelError is raised at CovarianceModel construction time when a
// control file names a kernel outside the closed {White, Powerlaw} set.
type UnknownKernelError struct {
	Name string
}

func (e *UnknownKernelError) Error() string {
	return "unrecognized noise kernel: " + e.Name
}

// White is an uncorrelated noise kernel: t[0] = 1, t[i>0] = 0. It has no
// shape parameters and no penalty.
type White struct{}

func (White) Name() string            { return "White" }
func (White) NumShapeParams() int     { return 0 }
func (White) Penalty([]float64) (float64, []float64) { return 0, nil }

func (White) FirstRow(m int, _ []float64) []float64 {
	t := make([]float64, m)
	t[0] = 1.0
	return t
}

// Powerlaw is the fractional-differencing autocovariance kernel with
// spectral index kappa, the single entry of its shape slice.
type Powerlaw struct{}

func (Powerlaw) Name() string        { return "Powerlaw" }
func (Powerlaw) NumShapeParams() int { return 1 }

// FirstRow computes t via the power-law recurrence
//
//	t[0] = Gamma(1+kappa) / Gamma(1+kappa/2)^2
//	t[i] = (i - kappa/2 - 1) / (i + kappa/2) * t[i-1]
func (Powerlaw) FirstRow(m int, shape []float64) []float64 {
	kappa := shape[0]
	t := make([]float64, m)
	if m == 0 {
		return t
	}
	t[0] = math.Gamma(1.0+kappa) / math.Pow(math.Gamma(1.0+0.5*kappa), 2.0)
	for i := 1; i < m; i++ {
		fi := float64(i)
		t[i] = (fi - 0.5*kappa - 1.0) / (fi + 0.5*kappa) * t[i-1]
	}
	return t
}

// Penalty clamps kappa into [-1+eps, 1-eps], inside the theoretical
// stationarity range, and returns a penalty proportional to how far out of
// [-1, 1] the unclamped value was.
func (Powerlaw) Penalty(shape []float64) (float64, []float64) {
	kappa := shape[0]
	clamped := make([]float64, 1)
	penalty := 0.0

	switch {
	case kappa < -1.0+powerlawEps:
		if kappa < -1.0 {
			penalty = (-1.0 - kappa) * Large
		}
		clamped[0] = -1.0 + powerlawEps
	case kappa > 1.0-powerlawEps:
		if kappa > 1.0 {
			penalty = (kappa - 1.0) * Large
		}
		clamped[0] = 1.0 - powerlawEps
	default:
		clamped[0] = kappa
	}
	return penalty, clamped
}
