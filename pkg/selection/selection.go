// Package selection implements a 3D voxel selection mask over a volumetric
// image grid. A Selection supports manual block painting, intensity-driven
// flood fill, region queries, and change records suitable for building undo
// state, and notifies registered listeners after every mutation.
package selection

// Change describes the most recent mutation applied to a Selection: the
// contents of the touched region before and after, and the region's origin
// within the mask. Old and New are independent snapshots with no aliasing
// against the live mask. A Selection retains only the single most recent
// change; every mutating call replaces it.
type Change struct {
	Old    *Block
	New    *Block
	Offset [3]int
}

// Selection is a dense boolean mask over one image's voxel grid. The shape
// is fixed at construction and the mask is exclusively owned: all reads of
// mask state go through copying accessors, never live aliases.
//
// A Selection is not safe for concurrent use; the editing model assumes a
// single writer.
type Selection struct {
	shape [3]int
	data  []uint8

	// clean is set by ClearSelection and cleared by every other mutator,
	// so that repeated clears can skip the work and the change record.
	clean bool

	last *Change

	listeners map[string]func()
	suspended bool
	pending   bool
}

// New creates an all-clear selection for an image grid with the given shape.
func New(shape [3]int) (*Selection, error) {
	for i := 0; i < 3; i++ {
		if shape[i] < 0 {
			return nil, &IncompatibleArrayError{Want: shape, Got: shape,
				Reason: "shape dimensions must be non-negative"}
		}
	}
	return &Selection{
		shape:     shape,
		data:      make([]uint8, shape[0]*shape[1]*shape[2]),
		clean:     true,
		listeners: make(map[string]func()),
	}, nil
}

// NewFromMask creates a selection that takes ownership of an existing mask
// array. The array must have exactly shape[0]*shape[1]*shape[2] elements,
// all restricted to {0, 1}; otherwise an IncompatibleArrayError is returned
// and no selection is produced. The caller must not retain a reference to
// the array afterwards.
func NewFromMask(shape [3]int, mask []uint8) (*Selection, error) {
	s, err := New(shape)
	if err != nil {
		return nil, err
	}

	if len(mask) != len(s.data) {
		return nil, &IncompatibleArrayError{Want: shape, Got: shape,
			Reason: "mask array length does not match shape"}
	}

	any := false
	for _, v := range mask {
		if v > 1 {
			return nil, &IncompatibleArrayError{Want: shape, Got: shape,
				Reason: "mask values must be 0 or 1"}
		}
		if v == 1 {
			any = true
		}
	}

	s.data = mask
	s.clean = !any
	return s, nil
}

// Shape returns the fixed shape of the mask.
func (s *Selection) Shape() [3]int {
	return s.shape
}

// LastChange returns the change record of the most recent mutation, or nil
// if the selection has not been mutated yet. The record is a snapshot; it is
// not updated by later mutations.
func (s *Selection) LastChange() *Change {
	return s.last
}

// index returns the flat index of (x, y, z) within the mask.
func (s *Selection) index(x, y, z int) int {
	return (z*s.shape[1]+y)*s.shape[0] + x
}

// Selected reports whether the voxel at (x, y, z) is selected.
func (s *Selection) Selected(x, y, z int) bool {
	return s.data[s.index(x, y, z)] != 0
}

// MaskCopy returns an independent snapshot of the whole mask, flat in
// x-fastest order. Consumers such as renderers get copies, never a live
// alias, so the single-writer invariant holds.
func (s *Selection) MaskCopy() []uint8 {
	out := make([]uint8, len(s.data))
	copy(out, s.data)
	return out
}

// checkBlock validates a (block, offset) pair against the mask bounds.
// Empty blocks are not validated here; mutators short-circuit on them first.
func (s *Selection) checkBlock(b *Block, offset [3]int) error {
	if b == nil {
		return &InvalidBlockError{Offset: offset, MaskShape: s.shape, Reason: "nil block"}
	}
	for i := 0; i < 3; i++ {
		if b.Shape[i] < 0 {
			return &InvalidBlockError{BlockShape: b.Shape, Offset: offset,
				MaskShape: s.shape, Reason: "negative block shape"}
		}
	}
	if len(b.Data) != b.Shape[0]*b.Shape[1]*b.Shape[2] {
		return &InvalidBlockError{BlockShape: b.Shape, Offset: offset,
			MaskShape: s.shape, Reason: "block data length does not match shape"}
	}
	for i := 0; i < 3; i++ {
		if offset[i] < 0 || offset[i]+b.Shape[i] > s.shape[i] {
			return &InvalidBlockError{BlockShape: b.Shape, Offset: offset,
				MaskShape: s.shape, Reason: "block extends outside mask"}
		}
	}
	return nil
}

// copyRegion snapshots the rectangular mask region of the given shape at
// the given offset into a new Block.
func (s *Selection) copyRegion(offset, shape [3]int) *Block {
	b := NewBlock(shape)
	for z := 0; z < shape[2]; z++ {
		for y := 0; y < shape[1]; y++ {
			src := s.index(offset[0], offset[1]+y, offset[2]+z)
			dst := b.index(0, y, z)
			copy(b.Data[dst:dst+shape[0]], s.data[src:src+shape[0]])
		}
	}
	return b
}

// wholeMask snapshots the entire mask as a Block.
func (s *Selection) wholeMask() *Block {
	b := &Block{Shape: s.shape, Data: make([]uint8, len(s.data))}
	copy(b.Data, s.data)
	return b
}

// record replaces the change record and fires listeners.
func (s *Selection) record(before, after *Block, offset [3]int) {
	s.last = &Change{Old: before, New: after, Offset: offset}
	s.notify()
}

// SetSelection overwrites the mask region at offset with the block's values.
// Non-zero block values select, zero values deselect. A zero-sized block is
// a complete no-op.
func (s *Selection) SetSelection(b *Block, offset [3]int) error {
	if b != nil && b.Empty() {
		return nil
	}
	if err := s.checkBlock(b, offset); err != nil {
		return err
	}

	before := s.copyRegion(offset, b.Shape)
	s.writeBlock(b, offset)
	after := s.copyRegion(offset, b.Shape)

	s.clean = false
	s.record(before, after, offset)
	return nil
}

// ReplaceSelection clears the entire mask, then writes the block at offset.
// The change record for a replace covers the whole mask at offset (0, 0, 0),
// so undo restores any prior selection that the clear step discarded. A
// zero-sized block is a complete no-op.
func (s *Selection) ReplaceSelection(b *Block, offset [3]int) error {
	if b != nil && b.Empty() {
		return nil
	}
	if err := s.checkBlock(b, offset); err != nil {
		return err
	}

	before := s.wholeMask()
	for i := range s.data {
		s.data[i] = 0
	}
	s.writeBlock(b, offset)
	after := s.wholeMask()

	s.clean = false
	s.record(before, after, [3]int{})
	return nil
}

// AddToSelection selects every voxel in the region at offset for which the
// block holds a non-zero value; voxels already selected stay selected. A
// zero-sized block is a complete no-op.
func (s *Selection) AddToSelection(b *Block, offset [3]int) error {
	if b != nil && b.Empty() {
		return nil
	}
	if err := s.checkBlock(b, offset); err != nil {
		return err
	}

	before := s.copyRegion(offset, b.Shape)
	for z := 0; z < b.Shape[2]; z++ {
		for y := 0; y < b.Shape[1]; y++ {
			for x := 0; x < b.Shape[0]; x++ {
				if b.At(x, y, z) != 0 {
					s.data[s.index(offset[0]+x, offset[1]+y, offset[2]+z)] = 1
				}
			}
		}
	}
	after := s.copyRegion(offset, b.Shape)

	s.clean = false
	s.record(before, after, offset)
	return nil
}

// RemoveFromSelection deselects every voxel in the region at offset for
// which the block holds a non-zero value. This is a masked clear: zero
// block values leave the corresponding mask voxels untouched. A zero-sized
// block is a complete no-op.
func (s *Selection) RemoveFromSelection(b *Block, offset [3]int) error {
	if b != nil && b.Empty() {
		return nil
	}
	if err := s.checkBlock(b, offset); err != nil {
		return err
	}

	before := s.copyRegion(offset, b.Shape)
	for z := 0; z < b.Shape[2]; z++ {
		for y := 0; y < b.Shape[1]; y++ {
			for x := 0; x < b.Shape[0]; x++ {
				if b.At(x, y, z) != 0 {
					s.data[s.index(offset[0]+x, offset[1]+y, offset[2]+z)] = 0
				}
			}
		}
	}
	after := s.copyRegion(offset, b.Shape)

	s.clean = false
	s.record(before, after, offset)
	return nil
}

// SelectBlock selects a cuboid of the given size centred on voxel, clipped
// to the mask and restricted to the given axes (see GenerateBlock).
func (s *Selection) SelectBlock(voxel [3]int, blockSize int, axes []int) error {
	b, offset := GenerateBlock(voxel, blockSize, s.shape, axes)
	return s.AddToSelection(b, offset)
}

// DeselectBlock deselects a cuboid of the given size centred on voxel,
// clipped to the mask and restricted to the given axes (see GenerateBlock).
func (s *Selection) DeselectBlock(voxel [3]int, blockSize int, axes []int) error {
	b, offset := GenerateBlock(voxel, blockSize, s.shape, axes)
	return s.RemoveFromSelection(b, offset)
}

// ClearSelection deselects every voxel. The change record covers the whole
// mask at offset (0, 0, 0). Clearing an already-clear selection is a no-op:
// the change record is not updated and no notification fires.
func (s *Selection) ClearSelection() {
	if s.clean {
		return
	}

	before := s.wholeMask()
	for i := range s.data {
		s.data[i] = 0
	}
	after := s.wholeMask()

	s.clean = true
	s.record(before, after, [3]int{})
}

// writeBlock copies block values into the mask region at offset, normalizing
// non-zero values to 1. Bounds must already be validated.
func (s *Selection) writeBlock(b *Block, offset [3]int) {
	for z := 0; z < b.Shape[2]; z++ {
		for y := 0; y < b.Shape[1]; y++ {
			for x := 0; x < b.Shape[0]; x++ {
				v := uint8(0)
				if b.At(x, y, z) != 0 {
					v = 1
				}
				s.data[s.index(offset[0]+x, offset[1]+y, offset[2]+z)] = v
			}
		}
	}
}

// TransferSelection would resample this selection onto the voxel grid of
// another image. No resampling policy has been specified, so it always
// returns ErrUnimplemented.
func (s *Selection) TransferSelection(dst DataSource) error {
	return ErrUnimplemented
}
