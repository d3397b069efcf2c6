package volume

// faceNeighbors is the 6-connected structuring element (the centre voxel is
// handled separately).
var faceNeighbors = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Dilate grows m by one face-connected voxel per iteration.
// iterations <= 0 returns an unchanged copy.
func Dilate(m *Mask, iterations int) *Mask {
	out := m.Clone()
	for it := 0; it < iterations; it++ {
		out = dilateOnce(out)
	}
	return out
}

// Erode shrinks m by one face-connected voxel per iteration. Voxels outside
// the grid count as clear, so set voxels on the volume border are removed.
// iterations <= 0 returns an unchanged copy.
func Erode(m *Mask, iterations int) *Mask {
	out := m.Clone()
	for it := 0; it < iterations; it++ {
		out = erodeOnce(out)
	}
	return out
}

// Transform applies the signed morphological radius used by the classifier:
// positive dilates, negative erodes by the absolute value, zero is a no-op.
func Transform(m *Mask, radius int) *Mask {
	switch {
	case radius > 0:
		return Dilate(m, radius)
	case radius < 0:
		return Erode(m, -radius)
	default:
		return m.Clone()
	}
}

func dilateOnce(m *Mask) *Mask {
	s := m.Shape
	out := NewMask(s)
	for z := 0; z < s[2]; z++ {
		for y := 0; y < s[1]; y++ {
			for x := 0; x < s[0]; x++ {
				i := s.Index(x, y, z)
				if m.Data[i] {
					out.Data[i] = true
					continue
				}
				for _, d := range faceNeighbors {
					nx, ny, nz := x+d[0], y+d[1], z+d[2]
					if s.Contains(nx, ny, nz) && m.Data[s.Index(nx, ny, nz)] {
						out.Data[i] = true
						break
					}
				}
			}
		}
	}
	return out
}

func erodeOnce(m *Mask) *Mask {
	s := m.Shape
	out := NewMask(s)
	for z := 0; z < s[2]; z++ {
		for y := 0; y < s[1]; y++ {
			for x := 0; x < s[0]; x++ {
				i := s.Index(x, y, z)
				if !m.Data[i] {
					continue
				}
				keep := true
				for _, d := range faceNeighbors {
					nx, ny, nz := x+d[0], y+d[1], z+d[2]
					if !s.Contains(nx, ny, nz) || !m.Data[s.Index(nx, ny, nz)] {
						keep = false
						break
					}
				}
				out.Data[i] = keep
			}
		}
	}
	return out
}
