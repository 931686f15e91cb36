// Package visualization renders inspection images of a volume and its
// current selection: grayscale 2D slices along any axis with selected
// voxels highlighted, saved as JPEG sequences.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/pauldmccarthy/fsleyes-sub006/internal/models"
	"github.com/pauldmccarthy/fsleyes-sub006/pkg/selection"
)

// Viewer renders slices of a data volume with a selection overlay.
type Viewer struct {
	vol *models.Volume
	sel *selection.Selection

	// volIdx selects the displayed volume for 4D images
	volIdx int

	// lo and span normalize intensities into [0, 1] for display
	lo   float64
	span float64
}

// NewViewer creates a viewer over the given volume and selection. The
// volume index selects the displayed volume for 4D images and is ignored
// for 3D images.
func NewViewer(vol *models.Volume, sel *selection.Selection, volIdx int) (*Viewer, error) {
	dims := vol.Dims()
	if len(dims) == 4 {
		if volIdx < 0 || volIdx >= dims[3] {
			return nil, fmt.Errorf("volume index %d out of range [0, %d)", volIdx, dims[3])
		}
	} else {
		volIdx = 0
	}

	grid := [3]int{dims[0], dims[1], dims[2]}
	if sel != nil && sel.Shape() != grid {
		return nil, fmt.Errorf("selection shape %v does not match volume grid %v",
			sel.Shape(), grid)
	}

	v := &Viewer{vol: vol, sel: sel, volIdx: volIdx, span: 1}

	vals := vol.Region([3]int{}, grid, volIdx)
	if len(vals) > 0 {
		lo, hi := vals[0], vals[0]
		for _, x := range vals {
			if x < lo {
				lo = x
			}
			if x > hi {
				hi = x
			}
		}
		v.lo = lo
		if hi > lo {
			v.span = hi - lo
		}
	}

	return v, nil
}

// pixel returns the display color of voxel (x, y, z): normalized grayscale,
// tinted red where the voxel is selected.
func (v *Viewer) pixel(x, y, z int) color.RGBA {
	g := (v.vol.ValueAt(x, y, z, v.volIdx) - v.lo) / v.span
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	c := uint8(g * 255)

	if v.sel != nil && v.sel.Selected(x, y, z) {
		// Blend toward red so the underlying intensity stays readable.
		return color.RGBA{R: 255, G: c / 3, B: c / 3, A: 255}
	}
	return color.RGBA{R: c, G: c, B: c, A: 255}
}

// ExtractSlice renders a 2D slice of the volume, with selection overlay,
// at the given position along the specified axis.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	dims := v.vol.Dims()
	nx, ny, nz := dims[0], dims[1], dims[2]

	var img *image.RGBA

	switch axis {
	case "x", "X":
		// Slice in the YZ plane
		if position >= nx {
			return nil, fmt.Errorf("position %d exceeds width %d", position, nx)
		}
		img = image.NewRGBA(image.Rect(0, 0, nz, ny))
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				img.SetRGBA(z, y, v.pixel(position, y, z))
			}
		}

	case "y", "Y":
		// Slice in the XZ plane
		if position >= ny {
			return nil, fmt.Errorf("position %d exceeds height %d", position, ny)
		}
		img = image.NewRGBA(image.Rect(0, 0, nx, nz))
		for z := 0; z < nz; z++ {
			for x := 0; x < nx; x++ {
				img.SetRGBA(x, z, v.pixel(x, position, z))
			}
		}

	case "z", "Z":
		// Slice in the XY plane
		if position >= nz {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, nz)
		}
		img = image.NewRGBA(image.Rect(0, 0, nx, ny))
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				img.SetRGBA(x, y, v.pixel(x, y, position))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves a rendered slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence renders and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	dims := v.vol.Dims()
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = dims[0]
	case "y", "Y":
		maxPos = dims[1]
	case "z", "Z":
		maxPos = dims[2]
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
