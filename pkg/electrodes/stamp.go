package electrodes

import (
	"slices"

	"github.com/ritzau/resection-analyzer/pkg/volume"
)

// ElectrodeRadius is the half-width, in voxels, of each electrode footprint
const ElectrodeRadius = 2

// LabelVolume is a voxel grid holding electrode IDs, 0 where no electrode lies
type LabelVolume struct {
	Shape volume.Shape
	Data  []int
}

// At returns the electrode ID stamped at (x, y, z)
func (lv *LabelVolume) At(x, y, z int) int {
	return lv.Data[lv.Shape.Index(x, y, z)]
}

// Stamp paints every record's footprint into a new label volume.
//
// A footprint covers the half-open range [c-radius, c+radius) on each axis,
// clipped to the grid. Records are painted in input order, so where
// footprints overlap the later record's ID wins. A footprint clipped to
// nothing (a coordinate far outside the grid) paints no voxels.
func Stamp(shape volume.Shape, records []Record, radius int) *LabelVolume {
	lv := &LabelVolume{Shape: shape, Data: make([]int, shape.Len())}

	for _, rec := range records {
		x0, x1 := span(rec.X, radius, shape[0])
		y0, y1 := span(rec.Y, radius, shape[1])
		z0, z1 := span(rec.Z, radius, shape[2])

		for z := z0; z < z1; z++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					lv.Data[shape.Index(x, y, z)] = rec.ID
				}
			}
		}
	}

	return lv
}

func span(c, radius, dim int) (int, int) {
	return max(c-radius, 0), min(c+radius, dim)
}

// Masked returns the distinct electrode IDs whose voxels intersect mask, in
// ascending order.
func (lv *LabelVolume) Masked(mask *volume.Mask) []int {
	seen := make(map[int]bool)
	for i, id := range lv.Data {
		if id > 0 && mask.Data[i] {
			seen[id] = true
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
