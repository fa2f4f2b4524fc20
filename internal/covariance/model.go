// Package covariance composes a weighted mixture of noise kernels into the
// first row of a Toeplitz covariance matrix, and carries the out-of-range
// hyperparameter penalty the optimizer consumes alongside the likelihood.
package covariance

import (
	"math"

	"trajmle/internal/kernel"
)

// halfPi is pi/2, the argument scale of the sin^2/cos^2 mixture-weight
// cascade.
const halfPi = math.Pi / 2.0

// Model holds an ordered list of noise kernels and knows how to lay out the
// combined hyperparameter vector: (M-1) mixture weights followed by each
// kernel's own shape parameters, in kernel order.
type Model struct {
	kernels []kernel.Kernel
}

// New builds a Model from an ordered list of kernel names. The order of
// names fixes the hyperparameter layout.
func New(names []string) (*Model, error) {
	if len(names) == 0 {
		return nil, &kernel.UnknownKernelError{Name: "<empty noise model list>"}
	}
	kernels := make([]kernel.Kernel, 0, len(names))
	for _, name := range names {
		k, err := kernel.New(name)
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, k)
	}
	return &Model{kernels: kernels}, nil
}

// NumKernels returns the number of mixture components.
func (m *Model) NumKernels() int { return len(m.kernels) }

// Nparam returns (M-1) mixture weights plus the sum of each kernel's own
// shape-parameter count.
func (m *Model) Nparam() int {
	n := len(m.kernels) - 1
	for _, k := range m.kernels {
		n += k.NumShapeParams()
	}
	return n
}

// shapeOffset returns, for kernel i, the start index of its shape block
// within p (after the M-1 mixture weights).
func (m *Model) shapeOffset(i int) int {
	off := len(m.kernels) - 1
	for j := 0; j < i; j++ {
		off += m.kernels[j].NumShapeParams()
	}
	return off
}

// fraction computes the mixture fraction of kernel i given the clamped
// mixture-weight prefix of p, via the nested sin^2/cos^2 cascade:
//
//	fraction_i = prod_{j<i} sin^2(pi/2 * mix_j) * (i<M-1 ? cos^2(pi/2*mix_i) : 1)
//
// clamped to <= 1 to guard against floating-point overshoot at the
// boundary.
func (m *Model) fraction(i int, mix []float64) float64 {
	if len(m.kernels) == 1 {
		return 1.0
	}
	f := 1.0
	for j := 0; j < i; j++ {
		s := math.Sin(halfPi * mix[j])
		f *= s * s
	}
	if i < len(m.kernels)-1 {
		c := math.Cos(halfPi * mix[i])
		f *= c * c
	}
	if f > 1.0 {
		f = 1.0
	}
	return f
}

// Penalty computes the additive penalty for out-of-range hyperparameters
// and returns a clamped copy of p. Mixture weights outside [0,1] are
// clamped into range with a penalty proportional to the excess; each
// kernel's own Penalty is then summed in. The input slice p is never
// mutated — the optimizer's view of the simplex vertex stays untouched, per
// the "in-place clamping" design note: only the copy handed to the solver
// is clamped.
func (m *Model) Penalty(p []float64) (penalty float64, clamped []float64) {
	clamped = append([]float64(nil), p...)
	nMix := len(m.kernels) - 1

	for i := 0; i < nMix; i++ {
		switch {
		case clamped[i] < 0.0:
			penalty += (0.0 - clamped[i]) * kernel.Large
			clamped[i] = 0.0
		case clamped[i] > 1.0:
			penalty += (clamped[i] - 1.0) * kernel.Large
			clamped[i] = 1.0
		}
	}

	for i, k := range m.kernels {
		n := k.NumShapeParams()
		if n == 0 {
			continue
		}
		off := m.shapeOffset(i)
		shapePenalty, shapeClamped := k.Penalty(clamped[off : off+n])
		penalty += shapePenalty
		copy(clamped[off:off+n], shapeClamped)
	}

	return penalty, clamped
}

// FirstRow returns t = sum_i fraction_i(p) * kernel_i.FirstRow(m, shape_i),
// the first row of the mixture's Toeplitz covariance.
func (m *Model) FirstRow(length int, p []float64) []float64 {
	t := make([]float64, length)
	nMix := len(m.kernels) - 1
	mix := p[:max(nMix, 0)]

	for i, k := range m.kernels {
		frac := m.fraction(i, mix)
		n := k.NumShapeParams()
		off := m.shapeOffset(i)
		row := k.FirstRow(length, p[off:off+n])
		for j := range t {
			t[j] += frac * row[j]
		}
	}
	return t
}
