package network

import "fmt"

// DimensionError reports a matrix that is empty, ragged, non-square or too
// small for the requested metric
type DimensionError struct {
	Rows, Cols int
	Reason     string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("adjacency matrix %dx%d: %s", e.Rows, e.Cols, e.Reason)
}

// AsymmetryError reports the first entry pair that breaks A == A^T
type AsymmetryError struct {
	I, J     int
	Aij, Aji float64
}

func (e *AsymmetryError) Error() string {
	return fmt.Sprintf("adjacency matrix is not undirected and symmetric: a[%d][%d]=%g but a[%d][%d]=%g",
		e.I, e.J, e.Aij, e.J, e.I, e.Aji)
}

// DivisionByZeroError reports a metric whose denominator vanished
type DivisionByZeroError struct {
	Quantity   string // e.g. "base synchronizability"
	Components int    // Connected components of the offending graph, 0 if unknown
}

func (e *DivisionByZeroError) Error() string {
	if e.Components > 0 {
		return fmt.Sprintf("division by zero: %s is 0 (graph has %d connected components)", e.Quantity, e.Components)
	}
	return fmt.Sprintf("division by zero: %s is 0", e.Quantity)
}

// NodeIndexError reports a lesion index outside [0, N)
type NodeIndexError struct {
	Index, N int
}

func (e *NodeIndexError) Error() string {
	return fmt.Sprintf("node index %d out of range for %d-node graph", e.Index, e.N)
}
