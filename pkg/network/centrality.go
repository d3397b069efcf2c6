package network

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Engine computes control centrality: the fractional change in
// synchronizability caused by lesioning a node set. The synchronizability
// and lesion operators are pluggable; NewEngine wires the defaults.
type Engine struct {
	Sync   SyncFunc
	Lesion LesionFunc
}

// NewEngine returns an engine using Synchronizability and Lesion
func NewEngine() *Engine {
	return &Engine{Sync: Synchronizability, Lesion: Lesion}
}

// RegionControl returns (sync(lesion(adj, nodes)) - sync(adj)) / sync(adj)
// for the simultaneous removal of nodes.
//
// adj must be square (*DimensionError) and exactly symmetric
// (*AsymmetryError); both are checked before any computation. A zero base
// synchronizability fails with *DivisionByZeroError; otherwise the result is
// finite, and a lesion that disconnects the graph or leaves a single node
// scores -1. An empty node list is valid and, with the default lesion
// operator, yields 0.
func (e *Engine) RegionControl(adj mat.Matrix, nodes []int) (float64, error) {
	a, err := FromMatrix(adj)
	if err != nil {
		return 0, err
	}

	base, err := e.baseSync(a)
	if err != nil {
		return 0, err
	}
	return e.delta(a, base, nodes)
}

// NodeControl returns the per-node control centrality vector: entry i is the
// region control of the single node {i}.
func (e *Engine) NodeControl(adj mat.Matrix) ([]float64, error) {
	a, err := FromMatrix(adj)
	if err != nil {
		return nil, err
	}

	base, err := e.baseSync(a)
	if err != nil {
		return nil, err
	}

	control := make([]float64, a.Len())
	for i := range control {
		d, err := e.delta(a, base, []int{i})
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		control[i] = d
	}
	return control, nil
}

func (e *Engine) baseSync(a *Adjacency) (float64, error) {
	base, err := e.Sync(a)
	if err != nil {
		return 0, fmt.Errorf("base synchronizability: %w", err)
	}
	if base == 0 {
		return 0, &DivisionByZeroError{Quantity: "base synchronizability", Components: a.Components()}
	}
	return base, nil
}

func (e *Engine) delta(a *Adjacency, base float64, nodes []int) (float64, error) {
	lesioned, err := e.Lesion(a, nodes)
	if err != nil {
		return 0, fmt.Errorf("lesion: %w", err)
	}
	// A single surviving node cannot synchronize with anything
	lesionSync := 0.0
	if lesioned.Len() >= 2 {
		if lesionSync, err = e.Sync(lesioned); err != nil {
			return 0, fmt.Errorf("lesioned synchronizability: %w", err)
		}
	}
	return (lesionSync - base) / base, nil
}

// RegionControl runs the default engine
func RegionControl(adj mat.Matrix, nodes []int) (float64, error) {
	return NewEngine().RegionControl(adj, nodes)
}

// NodeControl runs the default engine
func NodeControl(adj mat.Matrix) ([]float64, error) {
	return NewEngine().NodeControl(adj)
}
