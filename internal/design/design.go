// Package design builds the regressor matrix H of the trajectory model:
// a constant, a centered linear trend, cosine/sine pairs per periodic
// signal, and one step indicator per offset epoch.
package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// offsetEps is the tolerance used when deciding whether an observation
// epoch is on or after an offset epoch (step onset).
const offsetEps = 1.0e-4

// ErrInputShape is returned when the requested design matrix would have no
// rows.
var ErrInputShape = fmt.Errorf("design: zero-length epoch index")

// Build constructs the m x n design matrix H.
//
// sp is the sampling period in days, periods is the ordered list of
// periodic-signal periods (days), offsets is the ordered list of offset
// epochs (MJD), and epochs is the ordered sequence of observation epochs
// (MJD), length m.
//
// Column order: constant 1; centered linear trend (i - (m-1)/2); for each
// period P, cos(2*pi*i*sp/P) then sin(2*pi*i*sp/P); one indicator column per
// offset epoch, 1 once epoch[i] passes the offset, 0 before.
func Build(sp float64, offsets, periods, epochs []float64) (*mat.Dense, error) {
	m := len(epochs)
	if m == 0 {
		return nil, ErrInputShape
	}

	nPeriods := len(periods)
	nOffsets := len(offsets)
	n := 2 + 2*nPeriods + nOffsets

	H := mat.NewDense(m, n, nil)
	halfSpan := 0.5 * float64(m-1)

	for i := 0; i < m; i++ {
		fi := float64(i)

		H.Set(i, 0, 1.0)
		H.Set(i, 1, fi-halfSpan)

		for j, period := range periods {
			phase := 2.0 * math.Pi * fi * sp / period
			H.Set(i, 2+2*j, math.Cos(phase))
			H.Set(i, 2+2*j+1, math.Sin(phase))
		}

		for k, offset := range offsets {
			if offset < epochs[i]+offsetEps {
				H.Set(i, 2+2*nPeriods+k, 1.0)
			}
		}
	}

	return H, nil
}

// ColumnNames returns a human-readable label per column of a matrix built
// with the same (periods, offsets) as Build, for report formatting.
func ColumnNames(periods, offsets []float64) []string {
	names := []string{"constant", "trend"}
	for _, p := range periods {
		names = append(names, fmt.Sprintf("cos(%.4gd)", p), fmt.Sprintf("sin(%.4gd)", p))
	}
	for _, o := range offsets {
		names = append(names, fmt.Sprintf("offset@%.3f", o))
	}
	return names
}
