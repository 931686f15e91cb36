package selection

// SelectionSize returns the number of selected voxels. The count is
// computed by a full scan; callers needing it on a hot path should cache
// it themselves.
func (s *Selection) SelectionSize() int {
	n := 0
	for _, v := range s.data {
		if v != 0 {
			n++
		}
	}
	return n
}

// BoundedSelection returns the smallest axis-aligned sub-block of the mask
// containing every selected voxel, along with the sub-block's offset. An
// empty selection yields a zero-sized block at offset (0, 0, 0).
func (s *Selection) BoundedSelection() (*Block, [3]int) {
	lo := s.shape
	hi := [3]int{-1, -1, -1}

	for z := 0; z < s.shape[2]; z++ {
		for y := 0; y < s.shape[1]; y++ {
			row := s.index(0, y, z)
			for x := 0; x < s.shape[0]; x++ {
				if s.data[row+x] == 0 {
					continue
				}
				p := [3]int{x, y, z}
				for i := 0; i < 3; i++ {
					if p[i] < lo[i] {
						lo[i] = p[i]
					}
					if p[i] > hi[i] {
						hi[i] = p[i]
					}
				}
			}
		}
	}

	if hi[0] < 0 {
		return &Block{}, [3]int{}
	}

	shape := [3]int{hi[0] - lo[0] + 1, hi[1] - lo[1] + 1, hi[2] - lo[2] + 1}
	return s.copyRegion(lo, shape), lo
}

// Indices returns the coordinates of every selected voxel as a list of
// (x, y, z) triples, in scan order. If restrict is non-nil, only that
// sub-box is searched (clipped to the mask bounds); returned coordinates
// are always in full-mask space.
func (s *Selection) Indices(restrict *Box) [][3]int {
	lo := [3]int{}
	hi := s.shape

	if restrict != nil {
		for i := 0; i < 3; i++ {
			lo[i] = max(restrict.Lo[i], 0)
			hi[i] = min(restrict.Hi[i], s.shape[i])
			if hi[i] < lo[i] {
				hi[i] = lo[i]
			}
		}
	}

	var out [][3]int
	for z := lo[2]; z < hi[2]; z++ {
		for y := lo[1]; y < hi[1]; y++ {
			for x := lo[0]; x < hi[0]; x++ {
				if s.data[s.index(x, y, z)] != 0 {
					out = append(out, [3]int{x, y, z})
				}
			}
		}
	}
	return out
}
