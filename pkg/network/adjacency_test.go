package network

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewAdjacencyValidation(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		wantErr any
	}{
		{"empty", nil, &DimensionError{}},
		{"ragged", [][]float64{{0, 1}, {1}}, &DimensionError{}},
		{"non-square", [][]float64{{0, 1, 2}, {1, 0, 3}}, &DimensionError{}},
		{"asymmetric", [][]float64{{0, 1}, {2, 0}}, &AsymmetryError{}},
		{"nan diagonal", [][]float64{{nan(), 1}, {1, 0}}, &AsymmetryError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdjacency(tt.rows)
			require.Error(t, err)
			assert.IsType(t, tt.wantErr, err)
		})
	}
}

func TestAsymmetryErrorNamesEntries(t *testing.T) {
	_, err := NewAdjacency([][]float64{
		{0, 1, 0},
		{1, 0, 4},
		{0, 5, 0},
	})

	var asym *AsymmetryError
	require.ErrorAs(t, err, &asym)
	assert.Equal(t, 1, asym.I)
	assert.Equal(t, 2, asym.J)
	assert.Contains(t, err.Error(), "a[1][2]=4")
}

func TestFromMatrix(t *testing.T) {
	_, err := FromMatrix(mat.NewDense(2, 3, nil))
	var dim *DimensionError
	require.ErrorAs(t, err, &dim)
	assert.Equal(t, 2, dim.Rows)
	assert.Equal(t, 3, dim.Cols)

	_, err = FromMatrix(mat.NewDense(2, 2, []float64{0, 1, 1.5, 0}))
	var asym *AsymmetryError
	require.ErrorAs(t, err, &asym)

	data := []float64{0, 2, 2, 0}
	a, err := FromMatrix(mat.NewDense(2, 2, data))
	require.NoError(t, err)
	data[1] = 9
	assert.Equal(t, 2.0, a.At(0, 1), "adjacency must not alias caller data")

	same, err := FromMatrix(a)
	require.NoError(t, err)
	assert.Same(t, a, same)
}

func TestGraphAndComponents(t *testing.T) {
	a, err := NewAdjacency([][]float64{
		{1, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 3},
		{0, 0, 3, 0},
	})
	require.NoError(t, err)

	g := a.Graph()
	assert.Equal(t, 4, g.Nodes().Len())
	assert.Equal(t, 2, g.Edges().Len(), "self-loop must be dropped")
	w, ok := g.Weight(2, 3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 2, a.Components())
}

func TestParseAdjacency(t *testing.T) {
	a, err := ParseAdjacency(strings.NewReader("0, 1, 0.5\n1, 0, 2\n0.5, 2, 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, [][]float64{{0, 1, 0.5}, {1, 0, 2}, {0.5, 2, 0}}, a.Rows())

	_, err = ParseAdjacency(strings.NewReader("0,x\n1,0\n"))
	assert.Error(t, err)

	_, err = ParseAdjacency(strings.NewReader("0,1\n2,0\n"))
	var asym *AsymmetryError
	assert.ErrorAs(t, err, &asym)
}
