// Package models defines the shared data types for volumetric images.
package models

import "fmt"

// Volume is a 3D or 4D scalar image held in memory.
type Volume struct {
	// Data is the voxel data as a flat array in x-fastest order; for 4D
	// images the volumes are stored back to back.
	Data []float64

	// Shape holds the image dimensions: three integers for a 3D image,
	// four for a 4D image whose last entry counts volumes.
	Shape []int

	// VoxelSize is the physical size of each voxel along x, y, z, in mm.
	VoxelSize [3]float64
}

// NewVolume wraps a flat data array as a Volume, validating that the array
// length matches the given dimensions.
func NewVolume(data []float64, shape []int, voxelSize [3]float64) (*Volume, error) {
	if len(shape) != 3 && len(shape) != 4 {
		return nil, fmt.Errorf("volume must be 3D or 4D, got %d dimensions", len(shape))
	}

	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("volume dimensions must be non-negative, got %v", shape)
		}
		n *= d
	}
	if len(data) != n {
		return nil, fmt.Errorf("volume data length %d does not match shape %v (%d voxels)",
			len(data), shape, n)
	}

	for i, v := range voxelSize {
		if v <= 0 {
			voxelSize[i] = 1
		}
	}

	return &Volume{Data: data, Shape: shape, VoxelSize: voxelSize}, nil
}

// Dims returns a copy of the image dimensions.
func (v *Volume) Dims() []int {
	out := make([]int, len(v.Shape))
	copy(out, v.Shape)
	return out
}

// NumVolumes returns the number of volumes: 1 for 3D images.
func (v *Volume) NumVolumes() int {
	if len(v.Shape) == 4 {
		return v.Shape[3]
	}
	return 1
}

// volumeBase returns the flat offset of the first voxel of the given volume.
func (v *Volume) volumeBase(vol int) int {
	if len(v.Shape) != 4 {
		return 0
	}
	return vol * v.Shape[0] * v.Shape[1] * v.Shape[2]
}

// ValueAt returns the scalar value at voxel (x, y, z) of the given volume.
// The volume index is ignored for 3D images.
func (v *Volume) ValueAt(x, y, z, vol int) float64 {
	return v.Data[v.volumeBase(vol)+(z*v.Shape[1]+y)*v.Shape[0]+x]
}

// Region performs a bulk read of the half-open box [lo, hi) of the given
// volume, returned flat in x-fastest order.
func (v *Volume) Region(lo, hi [3]int, vol int) []float64 {
	nx := hi[0] - lo[0]
	ny := hi[1] - lo[1]
	nz := hi[2] - lo[2]
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil
	}

	base := v.volumeBase(vol)
	out := make([]float64, 0, nx*ny*nz)
	for z := lo[2]; z < hi[2]; z++ {
		for y := lo[1]; y < hi[1]; y++ {
			row := base + (z*v.Shape[1]+y)*v.Shape[0] + lo[0]
			out = append(out, v.Data[row:row+nx]...)
		}
	}
	return out
}
