package network

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SyncFunc computes a global synchronizability score for a graph
type SyncFunc func(adj *Adjacency) (float64, error)

// eigenTolerance scales the cutoff, relative to the largest Laplacian
// eigenvalue, below which an eigenvalue is treated as exactly zero
const eigenTolerance = 1e-12

// ErrEigenNoConvergence is returned when the Laplacian cannot be diagonalized
var ErrEigenNoConvergence = errors.New("laplacian eigendecomposition did not converge")

// Synchronizability returns λ2/λmax of the graph Laplacian L = D - A, where
// λ2 is the second-smallest and λmax the largest eigenvalue. Larger values
// mean the coupled system synchronizes more readily.
//
// Eigenvalues within round-off of zero are snapped to zero, so a disconnected
// graph scores exactly 0. That includes a graph without edges, whose λmax is
// also 0.
func Synchronizability(adj *Adjacency) (float64, error) {
	vals, err := LaplacianSpectrum(adj)
	if err != nil {
		return 0, err
	}

	if vals[1] == 0 {
		return 0, nil
	}
	lmax := vals[len(vals)-1]
	if lmax == 0 {
		return 0, &DivisionByZeroError{Quantity: "largest Laplacian eigenvalue", Components: adj.Components()}
	}
	return vals[1] / lmax, nil
}

// LaplacianSpectrum returns the Laplacian eigenvalues in ascending order.
// The graph needs at least two nodes.
func LaplacianSpectrum(adj *Adjacency) ([]float64, error) {
	n := adj.Len()
	if n < 2 {
		return nil, &DimensionError{Rows: n, Cols: n, Reason: "synchronizability needs at least 2 nodes"}
	}

	lap := Laplacian(adj)

	var es mat.EigenSym
	if ok := es.Factorize(lap, false); !ok {
		return nil, ErrEigenNoConvergence
	}
	vals := es.Values(nil)

	scale := 0.0
	for _, v := range vals {
		scale = math.Max(scale, math.Abs(v))
	}
	cutoff := eigenTolerance * float64(n) * scale
	for i, v := range vals {
		if math.Abs(v) <= cutoff {
			vals[i] = 0
		}
	}
	return vals, nil
}

// Laplacian returns D - A with D the diagonal of weighted degrees
func Laplacian(adj *Adjacency) *mat.SymDense {
	n := adj.Len()
	lap := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		degree := 0.0
		for j := 0; j < n; j++ {
			degree += adj.m.At(i, j)
		}
		lap.SetSym(i, i, degree-adj.m.At(i, i))
		for j := i + 1; j < n; j++ {
			lap.SetSym(i, j, -adj.m.At(i, j))
		}
	}
	return lap
}
