package selection

// Block is a dense cuboid patch of selection state, used to mutate a
// rectangular region of a Selection in one call. Data is stored flat in
// x-fastest order: index = (z*Shape[1] + y)*Shape[0] + x.
type Block struct {
	// Shape holds the block extent along each axis. Any component may be
	// zero, in which case the block is empty and mutators treat it as a
	// no-op.
	Shape [3]int

	// Data holds one byte per voxel, restricted to {0, 1}.
	Data []uint8
}

// NewBlock allocates a zero-filled block with the given shape.
func NewBlock(shape [3]int) *Block {
	return &Block{
		Shape: shape,
		Data:  make([]uint8, shape[0]*shape[1]*shape[2]),
	}
}

// Empty reports whether the block covers no voxels.
func (b *Block) Empty() bool {
	return b.Shape[0] == 0 || b.Shape[1] == 0 || b.Shape[2] == 0
}

// index returns the flat index of (x, y, z) within the block.
func (b *Block) index(x, y, z int) int {
	return (z*b.Shape[1]+y)*b.Shape[0] + x
}

// At returns the value at (x, y, z) in block-local coordinates.
func (b *Block) At(x, y, z int) uint8 {
	return b.Data[b.index(x, y, z)]
}

// Set stores v at (x, y, z) in block-local coordinates.
func (b *Block) Set(x, y, z int, v uint8) {
	b.Data[b.index(x, y, z)] = v
}

// Clone returns an independent copy of the block.
func (b *Block) Clone() *Block {
	c := &Block{Shape: b.Shape, Data: make([]uint8, len(b.Data))}
	copy(c.Data, b.Data)
	return c
}

// Box is an axis-aligned sub-region of a mask, half-open on every axis:
// a voxel v lies inside iff Lo[i] <= v[i] < Hi[i] for each axis i.
type Box struct {
	Lo [3]int
	Hi [3]int
}

// GenerateBlock computes a cuboid stamp of ones centred on voxel, clipped to
// shape. The axes argument lists the axes (0, 1, 2) along which the block
// extends; the remaining axes collapse to a single-voxel-thick slab at the
// voxel's coordinate, which supports 2D painting on an orthogonal slice.
//
// The centring rule is asymmetric for even sizes: the block extends one voxel
// further toward higher indices than toward lower ones, so a size-2 block at
// coordinate c covers c and c+1. A blockSize of 1 short-circuits to a single
// voxel at the given coordinate with no clipping. If clipping consumes the
// whole block, a zero-sized block is returned with offset equal to voxel.
//
// The returned offset is the block's origin within the mask's index space.
func GenerateBlock(voxel [3]int, blockSize int, shape [3]int, axes []int) (*Block, [3]int) {
	if blockSize < 1 {
		return &Block{}, voxel
	}

	if blockSize == 1 {
		b := NewBlock([3]int{1, 1, 1})
		b.Data[0] = 1
		return b, voxel
	}

	expand := [3]bool{}
	for _, ax := range axes {
		if ax >= 0 && ax < 3 {
			expand[ax] = true
		}
	}

	var lo, hi [3]int
	for i := 0; i < 3; i++ {
		if !expand[i] {
			// Collapsed axis: one voxel thick at the centre coordinate.
			lo[i] = voxel[i]
			hi[i] = voxel[i] + 1
			continue
		}

		lo[i] = voxel[i] - (blockSize-1)/2
		hi[i] = voxel[i] + blockSize/2 + 1

		if lo[i] < 0 {
			lo[i] = 0
		}
		if hi[i] > shape[i] {
			hi[i] = shape[i]
		}
	}

	for i := 0; i < 3; i++ {
		if hi[i] <= lo[i] {
			return &Block{}, voxel
		}
	}

	b := NewBlock([3]int{hi[0] - lo[0], hi[1] - lo[1], hi[2] - lo[2]})
	for i := range b.Data {
		b.Data[i] = 1
	}
	return b, lo
}
