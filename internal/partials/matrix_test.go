package partials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/arbitrary-partials/internal/tip"
)

func TestNewMatrixValidatesShape(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][][]float64
	}{
		{name: "no rows"},
		{name: "no sites", vectors: [][][]float64{{}}},
		{name: "ragged sites", vectors: [][][]float64{{{1}, {1}}, {{1}}}},
		{name: "empty vector", vectors: [][][]float64{{{1}, {}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatrix(tt.vectors)
			require.Error(t, err)
		})
	}
}

func TestMatrixCopiesInput(t *testing.T) {
	vectors := [][][]float64{{{0.1, 0.9}, {0.3, 0.7}}}
	m, err := NewMatrix(vectors)
	require.NoError(t, err)

	vectors[0][0][0] = 42
	row, err := m.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9, 0.3, 0.7}, row)

	row[0] = 42
	again, err := m.Row(0)
	require.NoError(t, err)
	assert.Equal(t, 0.1, again[0])
}

func TestMatrixVector(t *testing.T) {
	m, err := NewMatrix([][][]float64{{{1}, {0.2, 0.3, 0.5}}})
	require.NoError(t, err)

	v, err := m.Vector(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.3, 0.5}, v)

	_, err = m.Vector(0, 2)
	assert.ErrorIs(t, err, tip.ErrOutOfBounds)
	_, err = m.Vector(1, 0)
	assert.ErrorIs(t, err, tip.ErrOutOfBounds)
}

func TestMatrixUniformAndDense(t *testing.T) {
	m, err := NewMatrix([][][]float64{
		{{0.1, 0.9}, {0.3, 0.7}, {1, 0}},
		{{0.5, 0.5}, {0, 1}, {0.2, 0.8}},
	})
	require.NoError(t, err)

	width, ok := m.Uniform()
	require.True(t, ok)
	assert.Equal(t, 2, width)

	dense, err := m.Dense(1)
	require.NoError(t, err)
	r, c := dense.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 0.2, dense.At(2, 0))

	dense.Set(0, 0, 99)
	v, err := m.Vector(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, v)
}

func TestMatrixMixedWidths(t *testing.T) {
	m, err := NewMatrix([][][]float64{{{1, 0}, {0.2, 0.3, 0.5}}})
	require.NoError(t, err)

	_, ok := m.Uniform()
	assert.False(t, ok)
	_, err = m.Dense(0)
	assert.Error(t, err)

	n, err := m.RowLen(0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCopyRowDoesNotAllocate(t *testing.T) {
	m, err := NewMatrix([][][]float64{{{0.1, 0.9}, {0.3, 0.7}}})
	require.NoError(t, err)
	buf := make([]float64, 4)

	allocs := testing.AllocsPerRun(100, func() {
		_ = m.CopyRow(0, buf)
	})
	assert.Zero(t, allocs)
}
