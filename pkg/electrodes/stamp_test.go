package electrodes

import (
	"testing"

	"github.com/ritzau/resection-analyzer/pkg/volume"
)

func TestStampFootprint(t *testing.T) {
	shape := volume.Shape{10, 10, 10}
	lv := Stamp(shape, []Record{{ID: 7, X: 5, Y: 5, Z: 5}}, ElectrodeRadius)

	count := 0
	for _, id := range lv.Data {
		if id == 7 {
			count++
		}
	}
	if count != 64 {
		t.Errorf("footprint covers %d voxels, want 64 (4x4x4)", count)
	}
	if lv.At(3, 3, 3) != 7 || lv.At(6, 6, 6) != 7 {
		t.Error("footprint should span [c-2, c+2)")
	}
	if lv.At(7, 5, 5) != 0 || lv.At(2, 5, 5) != 0 {
		t.Error("footprint extends past its half-open bounds")
	}
}

func TestStampClampsToBounds(t *testing.T) {
	shape := volume.Shape{4, 4, 4}
	lv := Stamp(shape, []Record{{ID: 1, X: 0, Y: 3, Z: 1}}, ElectrodeRadius)

	// x: [0,2) y: [1,4) z: [0,3)
	count := 0
	for _, id := range lv.Data {
		if id == 1 {
			count++
		}
	}
	if count != 2*3*3 {
		t.Errorf("clamped footprint covers %d voxels, want 18", count)
	}
}

func TestStampOutsideGridPaintsNothing(t *testing.T) {
	shape := volume.Shape{4, 4, 4}
	lv := Stamp(shape, []Record{
		{ID: 1, X: -5, Y: 1, Z: 1},
		{ID: 2, X: 1, Y: 40, Z: 1},
	}, ElectrodeRadius)

	for i, id := range lv.Data {
		if id != 0 {
			t.Fatalf("voxel %d stamped with %d", i, id)
		}
	}
}

func TestStampLaterRecordWins(t *testing.T) {
	shape := volume.Shape{10, 10, 10}
	lv := Stamp(shape, []Record{
		{ID: 1, X: 4, Y: 4, Z: 4},
		{ID: 2, X: 5, Y: 5, Z: 5},
	}, ElectrodeRadius)

	if got := lv.At(4, 4, 4); got != 2 {
		t.Errorf("overlap voxel: got %d, want 2", got)
	}
	if got := lv.At(2, 2, 2); got != 1 {
		t.Errorf("non-overlap voxel: got %d, want 1", got)
	}

	swapped := Stamp(shape, []Record{
		{ID: 2, X: 5, Y: 5, Z: 5},
		{ID: 1, X: 4, Y: 4, Z: 4},
	}, ElectrodeRadius)
	if got := swapped.At(4, 4, 4); got != 1 {
		t.Errorf("overlap voxel after reorder: got %d, want 1", got)
	}
}

func TestMaskedSortedDistinct(t *testing.T) {
	shape := volume.Shape{10, 10, 10}
	lv := Stamp(shape, []Record{
		{ID: 9, X: 2, Y: 2, Z: 2},
		{ID: 3, X: 7, Y: 7, Z: 7},
		{ID: 5, X: 2, Y: 7, Z: 2},
	}, ElectrodeRadius)

	mask := volume.NewMask(shape)
	mask.Set(2, 2, 2, true)
	mask.Set(1, 1, 1, true)
	mask.Set(7, 7, 7, true)

	got := lv.Masked(mask)
	if len(got) != 2 || got[0] != 3 || got[1] != 9 {
		t.Errorf("Masked() = %v, want [3 9]", got)
	}
}
