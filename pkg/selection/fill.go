package selection

import "math"

// DataSource provides read access to the scalar voxel values of an image.
// The selection engine never mutates a data source; it is a read-only input
// to flood fill and value statistics.
type DataSource interface {
	// Dims returns the image dimensions: three integers for a 3D image,
	// four for a 4D image whose last dimension counts volumes.
	Dims() []int

	// ValueAt returns the scalar value at voxel (x, y, z) of the given
	// volume. The volume index is ignored for 3D images.
	ValueAt(x, y, z, vol int) float64

	// Region performs a bulk read of the half-open box [lo, hi) of the
	// given volume, returned flat in x-fastest order.
	Region(lo, hi [3]int, vol int) []float64
}

// FillParams controls a SelectByValue flood fill.
type FillParams struct {
	// Precision is the intensity tolerance: a voxel is a hit when its
	// value differs from the seed value by strictly less than Precision.
	// A value of zero or less requires exact equality with the seed.
	Precision float64

	// SearchRadius bounds the search to an axis-aligned ellipsoid of the
	// given per-axis radii (in voxel units) centred on the seed. If every
	// component is zero or less, the whole volume is searched. An axis
	// with a non-positive radius collapses to the seed's coordinate on
	// that axis while the others remain active.
	SearchRadius [3]float64

	// Local restricts the result to the voxels reachable from the seed
	// through face-adjacent (6-connected) hits.
	Local bool

	// Volume selects the volume index for 4D data sources.
	Volume int
}

// UniformRadius returns a SearchRadius with the same radius on every axis.
func UniformRadius(r float64) [3]float64 {
	return [3]float64{r, r, r}
}

// SelectByValue replaces the current selection with the set of voxels whose
// intensity matches the value at the seed voxel, subject to the given
// parameters. The data source must be 3D, or 4D with a valid volume index,
// and its voxel grid must match this selection's shape. The seed must lie
// inside the volume. On any error the selection is left unchanged.
//
// The result is applied with replace semantics: any prior selection is
// discarded, and the change record covers the whole mask.
func (s *Selection) SelectByValue(data DataSource, seed [3]int, p FillParams) error {
	dims := data.Dims()
	if len(dims) != 3 && len(dims) != 4 {
		return &DimensionalityError{Dims: len(dims)}
	}

	vol := 0
	if len(dims) == 4 {
		vol = p.Volume
		if vol < 0 || vol >= dims[3] {
			return &VolumeIndexError{Index: vol, Count: dims[3]}
		}
	}

	grid := [3]int{dims[0], dims[1], dims[2]}
	if grid != s.shape {
		return &IncompatibleArrayError{Want: s.shape, Got: grid,
			Reason: "data source grid does not match selection shape"}
	}

	for i := 0; i < 3; i++ {
		if seed[i] < 0 || seed[i] >= grid[i] {
			return &SeedOutOfBoundsError{Seed: seed, Shape: grid}
		}
	}

	seedVal := data.ValueAt(seed[0], seed[1], seed[2], vol)

	radii := p.SearchRadius
	bounded := radii[0] > 0 || radii[1] > 0 || radii[2] > 0

	lo := [3]int{}
	hi := grid
	if bounded {
		for i := 0; i < 3; i++ {
			r := 0
			if radii[i] > 0 {
				r = int(math.Ceil(radii[i]))
			}
			lo[i] = max(seed[i]-r, 0)
			hi[i] = min(seed[i]+r+1, grid[i])
		}
	}

	vals := data.Region(lo, hi, vol)
	hits := NewBlock([3]int{hi[0] - lo[0], hi[1] - lo[1], hi[2] - lo[2]})

	idx := 0
	for z := lo[2]; z < hi[2]; z++ {
		for y := lo[1]; y < hi[1]; y++ {
			for x := lo[0]; x < hi[0]; x++ {
				v := vals[idx]
				idx++

				var hit bool
				if p.Precision > 0 {
					hit = math.Abs(v-seedVal) < p.Precision
				} else {
					hit = v == seedVal
				}
				if !hit {
					continue
				}

				if bounded && !insideEllipsoid([3]int{x, y, z}, seed, radii) {
					continue
				}

				hits.Set(x-lo[0], y-lo[1], z-lo[2], 1)
			}
		}
	}

	if p.Local {
		hits = seedComponent(hits, [3]int{seed[0] - lo[0], seed[1] - lo[1], seed[2] - lo[2]})
	}

	return s.ReplaceSelection(hits, lo)
}

// insideEllipsoid reports whether voxel p lies within the axis-aligned
// ellipsoid with the given per-axis radii centred on the seed. Axes with
// non-positive radii must match the seed coordinate exactly.
func insideEllipsoid(p, seed [3]int, radii [3]float64) bool {
	dist := 0.0
	for i := 0; i < 3; i++ {
		d := float64(p[i] - seed[i])
		if radii[i] <= 0 {
			if d != 0 {
				return false
			}
			continue
		}
		dist += (d / radii[i]) * (d / radii[i])
	}
	return dist <= 1
}

// seedComponent extracts the 6-connected component of hits that contains
// the seed (in block-local coordinates), via breadth-first traversal over
// face-adjacent neighbours. Diagonal adjacency does not connect.
func seedComponent(hits *Block, seed [3]int) *Block {
	out := NewBlock(hits.Shape)
	if hits.At(seed[0], seed[1], seed[2]) == 0 {
		return out
	}

	var steps = [6][3]int{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}

	out.Set(seed[0], seed[1], seed[2], 1)
	queue := [][3]int{seed}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, d := range steps {
			n := [3]int{cur[0] + d[0], cur[1] + d[1], cur[2] + d[2]}
			if n[0] < 0 || n[0] >= hits.Shape[0] ||
				n[1] < 0 || n[1] >= hits.Shape[1] ||
				n[2] < 0 || n[2] >= hits.Shape[2] {
				continue
			}
			if hits.At(n[0], n[1], n[2]) == 0 || out.At(n[0], n[1], n[2]) != 0 {
				continue
			}
			out.Set(n[0], n[1], n[2], 1)
			queue = append(queue, n)
		}
	}

	return out
}
