// Package gap builds the missing-data indicator matrix F from an
// observation vector that encodes gaps as NaN.
package gap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInputShape signals a malformed observation vector: zero length, or
// every entry missing.
var ErrInputShape = fmt.Errorf("gap: invalid observation vector shape")

// Info bundles the gap matrix with the bookkeeping the solvers need: the
// count of missing entries and their row indices.
type Info struct {
	F            *mat.Dense
	MissingRows  []int
	MissingCount int
}

// Build scans x for NaN entries and constructs the m x k indicator matrix F
// where column j has a single 1 at the row of the j-th missing index. It
// enforces 0 <= k < m. When k = 0, F is an empty matrix with no columns
// (gonum's NewDense rejects a zero dimension).
func Build(x []float64) (*Info, error) {
	m := len(x)
	if m == 0 {
		return nil, ErrInputShape
	}

	missing := make([]int, 0)
	for i, v := range x {
		if math.IsNaN(v) {
			missing = append(missing, i)
		}
	}
	k := len(missing)
	if k >= m {
		return nil, fmt.Errorf("%w: all %d observations missing", ErrInputShape, m)
	}

	F := &mat.Dense{}
	if k > 0 {
		F = mat.NewDense(m, k, nil)
		for col, row := range missing {
			F.Set(row, col, 1.0)
		}
	}

	return &Info{F: F, MissingRows: missing, MissingCount: k}, nil
}

// Mask replaces NaN entries of x with zero, and zeroes the corresponding
// rows of H, for use by solvers that cannot consume NaN directly (the
// AmmarGrag solver's FFT path).
func Mask(x []float64, H *mat.Dense) ([]float64, *mat.Dense) {
	m := len(x)
	_, n := H.Dims()

	xm := make([]float64, m)
	Hm := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		if math.IsNaN(x[i]) {
			continue
		}
		xm[i] = x[i]
		for j := 0; j < n; j++ {
			Hm.Set(i, j, H.At(i, j))
		}
	}
	return xm, Hm
}
