// Package report turns a raw MLE result into the human-readable output
// named in spec.md Sec.6: the fitted trajectory H*theta, named parameters,
// and a +/-2 sigma significance flag per parameter.
package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"trajmle/internal/mle"
)

// Parameter is one named trajectory coefficient with its estimated value,
// standard error, and a significance flag at the 2-sigma level.
type Parameter struct {
	Name        string
	Value       float64
	StdError    float64
	Significant bool // |Value| > 2*StdError
}

// Report bundles the fitted trajectory with named, annotated parameters.
type Report struct {
	Parameters []Parameter
	Fitted     *mat.VecDense // H * theta
	SigmaEta   float64
	LnDetC     float64
	POpt       []float64
}

// Build computes H*theta and assembles named, significance-annotated
// parameters from an mle.Result. names must align column-for-column with H
// and theta (see internal/design.ColumnNames).
func Build(H *mat.Dense, res mle.Result, names []string) (*Report, error) {
	n := res.Theta.Len()
	if len(names) != n {
		return nil, fmt.Errorf("report: %d parameter names for a %d-length theta", len(names), n)
	}
	_, cols := H.Dims()
	if cols != n {
		return nil, fmt.Errorf("report: design matrix has %d columns, theta has length %d", cols, n)
	}

	var fitted mat.VecDense
	fitted.MulVec(H, res.Theta)

	params := make([]Parameter, n)
	for i := 0; i < n; i++ {
		se := math.Sqrt(res.CTheta.At(i, i))
		val := res.Theta.AtVec(i)
		params[i] = Parameter{
			Name:        names[i],
			Value:       val,
			StdError:    se,
			Significant: math.Abs(val) > 2*se,
		}
	}

	return &Report{
		Parameters: params,
		Fitted:     &fitted,
		SigmaEta:   res.SigmaEta,
		LnDetC:     res.LnDetC,
		POpt:       res.POpt,
	}, nil
}
