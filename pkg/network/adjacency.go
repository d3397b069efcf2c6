package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

// Adjacency is a validated square, symmetric weighted adjacency matrix of an
// undirected graph. It satisfies mat.Symmetric and is never modified after
// construction.
type Adjacency struct {
	m *mat.SymDense
}

var _ mat.Symmetric = (*Adjacency)(nil)

// NewAdjacency validates rows and copies them into an Adjacency
func NewAdjacency(rows [][]float64) (*Adjacency, error) {
	n := len(rows)
	if n == 0 {
		return nil, &DimensionError{Reason: "matrix is empty"}
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, &DimensionError{Rows: n, Cols: len(row),
				Reason: fmt.Sprintf("row %d has %d columns, want %d", i, len(row), n)}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rows[i][j] != rows[j][i] {
				return nil, &AsymmetryError{I: i, J: j, Aij: rows[i][j], Aji: rows[j][i]}
			}
		}
		// NaN never equals itself, so a NaN diagonal breaks A == A^T
		if math.IsNaN(rows[i][i]) {
			return nil, &AsymmetryError{I: i, J: i, Aij: rows[i][i], Aji: rows[i][i]}
		}
	}

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, rows[i][j])
		}
	}
	return &Adjacency{m: m}, nil
}

// FromMatrix validates any gonum matrix and copies it into an Adjacency.
// Symmetry is checked entry by entry with exact equality.
func FromMatrix(m mat.Matrix) (*Adjacency, error) {
	if a, ok := m.(*Adjacency); ok {
		return a, nil
	}

	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, &DimensionError{Rows: r, Cols: c, Reason: "matrix is empty"}
	}
	if r != c {
		return nil, &DimensionError{Rows: r, Cols: c, Reason: "matrix is not square"}
	}

	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			aij, aji := m.At(i, j), m.At(j, i)
			if aij != aji {
				return nil, &AsymmetryError{I: i, J: j, Aij: aij, Aji: aji}
			}
			out.SetSym(i, j, aij)
		}
	}
	return &Adjacency{m: out}, nil
}

// Dims returns the matrix dimensions
func (a *Adjacency) Dims() (int, int) {
	return a.m.Dims()
}

// At returns the edge weight between nodes i and j
func (a *Adjacency) At(i, j int) float64 {
	return a.m.At(i, j)
}

// T returns the transpose, which is the matrix itself
func (a *Adjacency) T() mat.Matrix {
	return a
}

// SymmetricDim returns the node count
func (a *Adjacency) SymmetricDim() int {
	return a.m.SymmetricDim()
}

// Len returns the node count
func (a *Adjacency) Len() int {
	return a.m.SymmetricDim()
}

// Rows returns a copy of the matrix as nested slices
func (a *Adjacency) Rows() [][]float64 {
	n := a.Len()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = a.m.At(i, j)
		}
	}
	return rows
}

// Graph converts the matrix into a weighted undirected gonum graph. Node IDs
// are matrix indices, zero weights are absent edges and self-loops are dropped.
func (a *Adjacency) Graph() *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	n := a.Len()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if w := a.m.At(i, j); w != 0 {
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
			}
		}
	}
	return g
}

// Components returns the number of connected components
func (a *Adjacency) Components() int {
	return len(topo.ConnectedComponents(a.Graph()))
}

// LoadAdjacency reads a comma-separated square matrix from path
func LoadAdjacency(path string) (*Adjacency, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	adj, err := ParseAdjacency(file)
	if err != nil {
		return nil, fmt.Errorf("reading adjacency %s: %w", path, err)
	}
	return adj, nil
}

// ParseAdjacency reads one matrix row per CSV record
func ParseAdjacency(r io.Reader) (*Adjacency, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", len(rows), j, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return NewAdjacency(rows)
}
