package mle

import (
	"sort"
)

// Nelder-Mead coefficients (standard values).
const (
	reflectCoeff  = 1.0
	expandCoeff   = 2.0
	contractCoeff = 0.5
	shrinkCoeff   = 0.5
)

// nelderMeadResult is what minimizeNelderMead returns: the best vertex
// found, its objective value, whether the spread tolerance was met before
// the iteration cap, and the iteration count actually used.
type nelderMeadResult struct {
	X          []float64
	F          float64
	Converged  bool
	Iterations int
}

// minimizeNelderMead runs the standard simplex algorithm (reflection,
// expansion, contraction, shrinkage) over f: R^n -> R, starting from an
// initial simplex built around x0. It stops when the maximum coordinate
// spread across simplex vertices drops to or below tol, or after maxIter
// iterations, falling back to the best vertex seen either way.
//
// f is allowed to return +Inf (signaling a numerical failure at that
// point, per spec.md Sec.7); the ordering step below treats +Inf as worse
// than any finite value, which sort.Slice already does for IEEE floats.
func minimizeNelderMead(f func([]float64) float64, x0 []float64, tol float64, maxIter int) nelderMeadResult {
	n := len(x0)
	if n == 0 {
		return nelderMeadResult{X: []float64{}, F: f(x0), Converged: true}
	}

	simplex := make([][]float64, n+1)
	values := make([]float64, n+1)
	simplex[0] = append([]float64(nil), x0...)
	for i := 1; i <= n; i++ {
		v := append([]float64(nil), x0...)
		step := 0.05
		if v[i-1] != 0 {
			step = 0.05 * v[i-1]
		}
		v[i-1] += step
		simplex[i] = v
	}
	for i, v := range simplex {
		values[i] = f(v)
	}

	order := make([]int, n+1)
	sortSimplex := func() {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })
		newSimplex := make([][]float64, n+1)
		newValues := make([]float64, n+1)
		for i, idx := range order {
			newSimplex[i] = simplex[idx]
			newValues[i] = values[idx]
		}
		simplex = newSimplex
		values = newValues
	}

	centroidExcept := func(worst int) []float64 {
		c := make([]float64, n)
		for i, v := range simplex {
			if i == worst {
				continue
			}
			for j := range c {
				c[j] += v[j]
			}
		}
		for j := range c {
			c[j] /= float64(n)
		}
		return c
	}

	pointAt := func(centroid, worst []float64, coeff float64) []float64 {
		p := make([]float64, n)
		for j := range p {
			p[j] = centroid[j] + coeff*(centroid[j]-worst[j])
		}
		return p
	}

	spread := func() float64 {
		max := 0.0
		for j := 0; j < n; j++ {
			lo, hi := simplex[0][j], simplex[0][j]
			for i := 1; i <= n; i++ {
				if simplex[i][j] < lo {
					lo = simplex[i][j]
				}
				if simplex[i][j] > hi {
					hi = simplex[i][j]
				}
			}
			if d := hi - lo; d > max {
				max = d
			}
		}
		return max
	}

	iter := 0
	converged := false
	for ; iter < maxIter; iter++ {
		sortSimplex()
		if spread() <= tol {
			converged = true
			break
		}

		worst := n
		centroid := centroidExcept(worst)

		reflected := pointAt(centroid, simplex[worst], reflectCoeff)
		fReflected := f(reflected)

		switch {
		case fReflected < values[0]:
			expanded := pointAt(centroid, simplex[worst], expandCoeff)
			fExpanded := f(expanded)
			if fExpanded < fReflected {
				simplex[worst], values[worst] = expanded, fExpanded
			} else {
				simplex[worst], values[worst] = reflected, fReflected
			}

		case fReflected < values[n-1]:
			simplex[worst], values[worst] = reflected, fReflected

		case fReflected < values[worst]:
			// Outside contraction: x_c = x_o + rho*(x_r - x_o).
			contracted := pointAt(centroid, simplex[worst], contractCoeff)
			fContracted := f(contracted)
			if fContracted < fReflected {
				simplex[worst], values[worst] = contracted, fContracted
			} else {
				shrinkToward(simplex, values, f, n)
			}

		default:
			// Inside contraction: x_c = x_o + rho*(x_worst - x_o).
			contracted := pointAt(centroid, simplex[worst], -contractCoeff)
			fContracted := f(contracted)
			if fContracted < values[worst] {
				simplex[worst], values[worst] = contracted, fContracted
			} else {
				shrinkToward(simplex, values, f, n)
			}
		}
	}

	sortSimplex()
	return nelderMeadResult{
		X:          simplex[0],
		F:          values[0],
		Converged:  converged,
		Iterations: iter,
	}
}

// shrinkToward contracts every vertex but the best toward the best vertex
// by shrinkCoeff, re-evaluating f at each.
func shrinkToward(simplex [][]float64, values []float64, f func([]float64) float64, n int) {
	best := simplex[0]
	for i := 1; i <= n; i++ {
		for j := 0; j < n; j++ {
			simplex[i][j] = best[j] + shrinkCoeff*(simplex[i][j]-best[j])
		}
		values[i] = f(simplex[i])
	}
}
