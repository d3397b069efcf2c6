package volume

import "fmt"

// ResectionThreshold is the cutoff applied to probabilistic resection images.
// Voxels at or above it are treated as resected.
const ResectionThreshold = 0.8

// Shape is the voxel extent along x, y and z.
type Shape [3]int

// Len returns the number of voxels in the grid
func (s Shape) Len() int {
	return s[0] * s[1] * s[2]
}

// Contains reports whether (x, y, z) lies inside the grid
func (s Shape) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < s[0] && y < s[1] && z < s[2]
}

// Index returns the flat offset of (x, y, z). x varies fastest, matching the
// on-disk NIfTI layout.
func (s Shape) Index(x, y, z int) int {
	return x + s[0]*(y+s[1]*z)
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s[0], s[1], s[2])
}

// Affine maps voxel indices to world coordinates (row-major 4x4).
type Affine [4][4]float64

// IdentityAffine returns the voxel-equals-world transform
func IdentityAffine() Affine {
	return Affine{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Volume is a scalar 3-D image with its spatial transform.
// The affine is carried for callers that need world coordinates; nothing in
// the classification path consumes it.
type Volume struct {
	Shape  Shape
	Affine Affine
	Data   []float64
}

// New allocates a zero-filled volume with an identity affine
func New(shape Shape) *Volume {
	return &Volume{
		Shape:  shape,
		Affine: IdentityAffine(),
		Data:   make([]float64, shape.Len()),
	}
}

// Filled allocates a volume where every voxel holds value
func Filled(shape Shape, value float64) *Volume {
	v := New(shape)
	for i := range v.Data {
		v.Data[i] = value
	}
	return v
}

// At returns the voxel value at (x, y, z)
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Shape.Index(x, y, z)]
}

// Set stores value at (x, y, z)
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[v.Shape.Index(x, y, z)] = value
}

// Mask is a binary voxel grid.
type Mask struct {
	Shape Shape
	Data  []bool
}

// NewMask allocates an empty mask
func NewMask(shape Shape) *Mask {
	return &Mask{Shape: shape, Data: make([]bool, shape.Len())}
}

// At reports whether (x, y, z) is set
func (m *Mask) At(x, y, z int) bool {
	return m.Data[m.Shape.Index(x, y, z)]
}

// Set marks (x, y, z) with value
func (m *Mask) Set(x, y, z int, value bool) {
	m.Data[m.Shape.Index(x, y, z)] = value
}

// Count returns the number of set voxels
func (m *Mask) Count() int {
	n := 0
	for _, on := range m.Data {
		if on {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the mask
func (m *Mask) Clone() *Mask {
	out := &Mask{Shape: m.Shape, Data: make([]bool, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Threshold binarizes v: voxels >= cutoff become set, everything else clear.
// NaN voxels compare false and are cleared.
func Threshold(v *Volume, cutoff float64) *Mask {
	m := NewMask(v.Shape)
	for i, value := range v.Data {
		m.Data[i] = value >= cutoff
	}
	return m
}
