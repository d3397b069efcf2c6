package volume

import "testing"

func maskWith(shape Shape, points ...[3]int) *Mask {
	m := NewMask(shape)
	for _, p := range points {
		m.Set(p[0], p[1], p[2], true)
	}
	return m
}

func TestThreshold(t *testing.T) {
	v := New(Shape{3, 1, 1})
	v.Data = []float64{0.79999, 0.8, 1.5}

	m := Threshold(v, ResectionThreshold)

	want := []bool{false, true, true}
	for i, w := range want {
		if m.Data[i] != w {
			t.Errorf("voxel %d: got %v, want %v", i, m.Data[i], w)
		}
	}
}

func TestDilateSingleVoxel(t *testing.T) {
	m := maskWith(Shape{5, 5, 5}, [3]int{2, 2, 2})

	once := Dilate(m, 1)
	if got := once.Count(); got != 7 {
		t.Errorf("one iteration: got %d voxels, want 7 (centre + 6 faces)", got)
	}
	if once.At(3, 3, 2) {
		t.Error("edge-diagonal neighbour should not be set after one iteration")
	}

	twice := Dilate(m, 2)
	if got := twice.Count(); got != 25 {
		t.Errorf("two iterations: got %d voxels, want 25", got)
	}
	if !twice.At(3, 3, 2) {
		t.Error("edge-diagonal neighbour should be set after two iterations")
	}
}

func TestDilateEmptyStaysEmpty(t *testing.T) {
	m := NewMask(Shape{4, 4, 4})
	for _, iterations := range []int{1, 3, 10} {
		if got := Dilate(m, iterations).Count(); got != 0 {
			t.Errorf("Dilate(empty, %d) set %d voxels", iterations, got)
		}
	}
}

func TestErodePeelsBorder(t *testing.T) {
	shape := Shape{5, 5, 5}
	full := NewMask(shape)
	for i := range full.Data {
		full.Data[i] = true
	}

	once := Erode(full, 1)
	if got := once.Count(); got != 27 {
		t.Errorf("one iteration: got %d voxels, want 27 (3x3x3 core)", got)
	}
	if once.At(0, 2, 2) {
		t.Error("border voxel should be eroded")
	}

	if got := Erode(full, 3).Count(); got != 0 {
		t.Errorf("three iterations: got %d voxels, want 0", got)
	}
}

func TestTransformZeroIsIdentityCopy(t *testing.T) {
	m := maskWith(Shape{3, 3, 3}, [3]int{1, 1, 1}, [3]int{0, 0, 0})
	out := Transform(m, 0)

	for i := range m.Data {
		if out.Data[i] != m.Data[i] {
			t.Fatalf("voxel %d changed under zero radius", i)
		}
	}
	out.Data[0] = false
	if !m.Data[0] {
		t.Error("Transform must not alias its input")
	}
}

func TestTransformSign(t *testing.T) {
	m := maskWith(Shape{5, 5, 5}, [3]int{2, 2, 2})

	if got := Transform(m, 1).Count(); got != 7 {
		t.Errorf("positive radius: got %d voxels, want 7", got)
	}
	if got := Transform(m, -1).Count(); got != 0 {
		t.Errorf("negative radius: got %d voxels, want 0", got)
	}
	if m.Count() != 1 {
		t.Error("input mask was modified")
	}
}
