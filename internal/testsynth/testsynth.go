// Package testsynth generates small synthetic time series for the MLE
// driver test suite. It intentionally favors simplicity over
// statistical fidelity: callers should use generous tolerances, since these
// fixtures are not meant to pin exact convergence, only to exercise the
// pipeline end to end with predictable, roughly-correct behavior.
package testsynth

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
)

// WhiteNoise draws m iid N(0, sigma^2) samples with a fixed seed, built
// from a distuv distribution the same way synthetic statistics are
// generated elsewhere in this codebase's tests.
func WhiteNoise(m int, sigma float64, seed uint64) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed)}
	out := make([]float64, m)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// PowerlawNoise approximates a fractionally-differenced series with
// spectral index kappa by filtering white noise through the binomial
// expansion of (1-B)^-d, d = -kappa/2 (the same convention as the Powerlaw
// kernel, so negative kappa is persistent noise): x[i] = sum_j psi_j * e[i-j],
// psi_0 = 1, psi_j = psi_{j-1} * (j-1+d)/j.
func PowerlawNoise(m int, kappa, sigma float64, seed uint64) []float64 {
	e := WhiteNoise(m, sigma, seed)
	d := -kappa / 2.0

	psi := make([]float64, m)
	psi[0] = 1.0
	for j := 1; j < m; j++ {
		fj := float64(j)
		psi[j] = psi[j-1] * (fj - 1.0 + d) / fj
	}

	x := make([]float64, m)
	for i := 0; i < m; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += psi[j] * e[i-j]
		}
		x[i] = sum
	}
	return x
}

// CenteredTrend returns i - (m-1)/2 for i = 0..m-1, matching the design
// package's trend column so tests can build x independently of it.
func CenteredTrend(m int) []float64 {
	out := make([]float64, m)
	half := 0.5 * float64(m-1)
	for i := range out {
		out[i] = float64(i) - half
	}
	return out
}

// WithMissing returns a copy of x with the given fraction of entries (by a
// deterministic stride, not randomness, to keep tests reproducible)
// replaced with NaN.
func WithMissing(x []float64, fraction float64) []float64 {
	out := append([]float64(nil), x...)
	if fraction <= 0 {
		return out
	}
	stride := int(math.Round(1.0 / fraction))
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < len(out); i += stride {
		out[i] = math.NaN()
	}
	return out
}
