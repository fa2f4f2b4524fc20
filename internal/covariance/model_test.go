package covariance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNparam(t *testing.T) {
	m, err := New([]string{"White"})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Nparam())

	m, err = New([]string{"White", "Powerlaw"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Nparam()) // 1 mix weight + 1 kappa

	m, err = New([]string{"Powerlaw", "Powerlaw"})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Nparam()) // 1 mix weight + 2 kappas
}

func TestNew_UnknownModel(t *testing.T) {
	_, err := New([]string{"ARFIMA"})
	require.Error(t, err)
}

// MixturePartition verifies the law from spec.md Sec.8.1: for any p with mix
// components in [0,1], sum_i fraction_i(p) = 1.
func TestMixturePartition(t *testing.T) {
	cases := [][]float64{
		{0.0},
		{0.5},
		{1.0},
		{0.25, 0.75},
	}
	names := [][]string{
		{"White", "Powerlaw"},
		{"White", "Powerlaw"},
		{"White", "Powerlaw"},
		{"White", "Powerlaw", "White"},
	}

	for idx, mix := range cases {
		m, err := New(names[idx])
		require.NoError(t, err)

		sum := 0.0
		for i := 0; i < m.NumKernels(); i++ {
			sum += m.fraction(i, mix)
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestFirstRow_SingleWhite(t *testing.T) {
	m, err := New([]string{"White"})
	require.NoError(t, err)
	t0 := m.FirstRow(5, []float64{})
	assert.Equal(t, []float64{1, 0, 0, 0, 0}, t0)
}

func TestFirstRow_MixtureScale(t *testing.T) {
	m, err := New([]string{"White", "Powerlaw"})
	require.NoError(t, err)
	// mix=0 -> fraction_White = cos^2(0) = 1, fraction_Powerlaw = sin^2(0) = 0
	row := m.FirstRow(4, []float64{0.0, -0.3})
	assert.InDelta(t, 1.0, row[0], 1e-9)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, 0.0, row[i], 1e-9)
	}
}

func TestPenalty_DoesNotMutateInput(t *testing.T) {
	m, err := New([]string{"White", "Powerlaw"})
	require.NoError(t, err)
	p := []float64{1.5, 2.0}
	penalty, clamped := m.Penalty(p)
	assert.Greater(t, penalty, 0.0)
	assert.Equal(t, []float64{1.5, 2.0}, p, "input slice must not be mutated")
	assert.Equal(t, 1.0, clamped[0])
	assert.InDelta(t, 1.0, clamped[1], 1e-4)
}

func TestPenalty_Finite(t *testing.T) {
	m, err := New([]string{"White", "Powerlaw"})
	require.NoError(t, err)
	for _, p := range [][]float64{{-10, -10}, {10, 10}, {0.5, 0}} {
		penalty, _ := m.Penalty(p)
		assert.False(t, penalty < 0)
		assert.False(t, math.IsInf(penalty, 0) || math.IsNaN(penalty))
	}
}
