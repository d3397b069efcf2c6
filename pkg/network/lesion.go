package network

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// LesionFunc derives the adjacency matrix left after removing nodes
type LesionFunc func(adj *Adjacency, nodes []int) (*Adjacency, error)

// Lesion removes every row and column listed in nodes, returning a smaller
// matrix over the surviving nodes in their original order. Duplicate indices
// are ignored. An empty node list yields a copy equal to adj.
func Lesion(adj *Adjacency, nodes []int) (*Adjacency, error) {
	drop, err := lesionSet(adj.Len(), nodes)
	if err != nil {
		return nil, err
	}

	keep := make([]int, 0, adj.Len()-len(drop))
	for i := 0; i < adj.Len(); i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, &DimensionError{Reason: "lesion removes every node"}
	}

	out := mat.NewSymDense(len(keep), nil)
	for i, src := range keep {
		for j := i; j < len(keep); j++ {
			out.SetSym(i, j, adj.m.At(src, keep[j]))
		}
	}
	return &Adjacency{m: out}, nil
}

// LesionZero disconnects the listed nodes by zeroing their rows and columns,
// keeping the matrix size unchanged.
func LesionZero(adj *Adjacency, nodes []int) (*Adjacency, error) {
	drop, err := lesionSet(adj.Len(), nodes)
	if err != nil {
		return nil, err
	}

	n := adj.Len()
	out := mat.NewSymDense(n, nil)
	out.CopySym(adj.m)
	for i := range drop {
		for j := 0; j < n; j++ {
			out.SetSym(i, j, 0)
		}
	}
	return &Adjacency{m: out}, nil
}

// LesionedIndices returns the validated, deduplicated node list in ascending order
func LesionedIndices(n int, nodes []int) ([]int, error) {
	drop, err := lesionSet(n, nodes)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(drop))
	for i := range drop {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

func lesionSet(n int, nodes []int) (map[int]bool, error) {
	drop := make(map[int]bool, len(nodes))
	for _, idx := range nodes {
		if idx < 0 || idx >= n {
			return nil, &NodeIndexError{Index: idx, N: n}
		}
		drop[idx] = true
	}
	return drop, nil
}
