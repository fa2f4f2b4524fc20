package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func epochRange(m int) []float64 {
	e := make([]float64, m)
	for i := range e {
		e[i] = float64(i)
	}
	return e
}

func TestBuild_ZeroLength(t *testing.T) {
	_, err := Build(1.0, nil, nil, nil)
	require.ErrorIs(t, err, ErrInputShape)
}

func TestBuild_Shape(t *testing.T) {
	H, err := Build(1.0, []float64{3}, []float64{365.25}, epochRange(10))
	require.NoError(t, err)
	rows, cols := H.Dims()
	assert.Equal(t, 10, rows)
	assert.Equal(t, 2+2+1, cols) // const, trend, cos, sin, offset
}

func TestBuild_CenteredTrend(t *testing.T) {
	H, err := Build(1.0, nil, nil, epochRange(5))
	require.NoError(t, err)
	// (m-1)/2 = 2, so trend column is -2,-1,0,1,2
	for i, want := range []float64{-2, -1, 0, 1, 2} {
		assert.InDelta(t, want, H.At(i, 1), 1e-12)
	}
}

func TestBuild_Offset(t *testing.T) {
	H, err := Build(1.0, []float64{2}, nil, epochRange(5))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		want := 0.0
		if 2 < float64(i)+1.0e-4 {
			want = 1.0
		}
		assert.Equal(t, want, H.At(i, 2))
	}
}

func TestColumnNames(t *testing.T) {
	names := ColumnNames([]float64{365.25}, []float64{10})
	assert.Equal(t, []string{"constant", "trend", "cos(365.2d)", "sin(365.2d)", "offset@10.000"}, names)
}
