package selection

import (
	"errors"
	"fmt"
)

// ErrUnimplemented is returned by TransferSelection: moving a selection
// between images with differing voxel grids requires a resampling policy
// that has not been specified.
var ErrUnimplemented = errors.New("selection: transferring a selection between images is not implemented")

// IncompatibleArrayError reports a supplied mask array whose shape, length
// or contents do not match the owning image grid.
type IncompatibleArrayError struct {
	Want   [3]int
	Got    [3]int
	Reason string
}

func (e *IncompatibleArrayError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("selection: incompatible mask array (want shape %v, got %v): %s",
			e.Want, e.Got, e.Reason)
	}
	return fmt.Sprintf("selection: incompatible mask array (want shape %v, got %v)", e.Want, e.Got)
}

// DimensionalityError reports a data source that is neither 3D nor 4D.
type DimensionalityError struct {
	Dims int
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("selection: unsupported data dimensionality %d (want 3 or 4)", e.Dims)
}

// InvalidBlockError reports a (block, offset) pair that does not describe a
// well-formed region of the mask. Zero-sized blocks are not an error; they
// are silent no-ops.
type InvalidBlockError struct {
	BlockShape [3]int
	Offset     [3]int
	MaskShape  [3]int
	Reason     string
}

func (e *InvalidBlockError) Error() string {
	return fmt.Sprintf("selection: invalid block %v at offset %v for mask %v: %s",
		e.BlockShape, e.Offset, e.MaskShape, e.Reason)
}

// SeedOutOfBoundsError reports a flood-fill seed voxel that lies outside the
// data volume.
type SeedOutOfBoundsError struct {
	Seed  [3]int
	Shape [3]int
}

func (e *SeedOutOfBoundsError) Error() string {
	return fmt.Sprintf("selection: seed voxel %v outside volume %v", e.Seed, e.Shape)
}

// VolumeIndexError reports a 4D volume index outside the data source's
// volume count.
type VolumeIndexError struct {
	Index int
	Count int
}

func (e *VolumeIndexError) Error() string {
	return fmt.Sprintf("selection: volume index %d out of range [0, %d)", e.Index, e.Count)
}
