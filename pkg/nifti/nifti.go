// Package nifti reads and writes NIfTI-1 volumetric images, the file format
// used for the MRI volumes this tool operates on. Only the subset needed
// here is supported: single-file .nii images, optionally gzip-compressed,
// with scalar datatypes.
package nifti

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/pauldmccarthy/fsleyes-sub006/internal/models"
)

// NIfTI-1 datatype codes for the supported scalar types.
const (
	typeUint8   = 2
	typeInt16   = 4
	typeInt32   = 8
	typeFloat32 = 16
	typeFloat64 = 64
	typeInt8    = 256
	typeUint16  = 512
)

const headerSize = 348

// header is the fixed 348-byte NIfTI-1 header.
type header struct {
	SizeofHdr    int32
	DataType     [10]byte
	DBName       [18]byte
	Extents      int32
	SessionError int16
	Regular      byte
	DimInfo      byte
	Dim          [8]int16
	IntentP1     float32
	IntentP2     float32
	IntentP3     float32
	IntentCode   int16
	Datatype     int16
	Bitpix       int16
	SliceStart   int16
	Pixdim       [8]float32
	VoxOffset    float32
	SclSlope     float32
	SclInter     float32
	SliceEnd     int16
	SliceCode    byte
	XyztUnits    byte
	CalMax       float32
	CalMin       float32
	SliceDur     float32
	Toffset      float32
	Glmax        int32
	Glmin        int32
	Descrip      [80]byte
	AuxFile      [24]byte
	QformCode    int16
	SformCode    int16
	QuaternB     float32
	QuaternC     float32
	QuaternD     float32
	QoffsetX     float32
	QoffsetY     float32
	QoffsetZ     float32
	SrowX        [4]float32
	SrowY        [4]float32
	SrowZ        [4]float32
	IntentName   [16]byte
	Magic        [4]byte
}

// Read loads a NIfTI-1 image from path. Files ending in .gz are
// decompressed transparently. 3D and 4D images with scalar datatypes are
// supported; values are converted to float64 with the header's scaling
// slope and intercept applied.
func Read(path string) (*models.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NIfTI file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return decode(r)
}

// decode parses a NIfTI-1 stream: header, vox_offset padding, then data.
func decode(r io.Reader) (*models.Volume, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read NIfTI header: %w", err)
	}

	// Byte order is not recorded explicitly; sizeof_hdr doubles as the
	// endianness probe.
	var hdr header
	var order binary.ByteOrder = binary.LittleEndian
	if err := binary.Read(bytes.NewReader(raw), order, &hdr); err != nil {
		return nil, fmt.Errorf("failed to decode NIfTI header: %w", err)
	}
	if hdr.SizeofHdr != headerSize {
		order = binary.BigEndian
		if err := binary.Read(bytes.NewReader(raw), order, &hdr); err != nil {
			return nil, fmt.Errorf("failed to decode NIfTI header: %w", err)
		}
		if hdr.SizeofHdr != headerSize {
			return nil, fmt.Errorf("not a NIfTI-1 file: sizeof_hdr = %d", hdr.SizeofHdr)
		}
	}

	if m := string(hdr.Magic[:3]); m != "n+1" && m != "ni1" {
		return nil, fmt.Errorf("not a NIfTI-1 file: bad magic %q", m)
	}

	ndim := int(hdr.Dim[0])
	if ndim != 3 && ndim != 4 {
		return nil, fmt.Errorf("unsupported NIfTI dimensionality %d (want 3 or 4)", ndim)
	}

	shape := make([]int, ndim)
	n := 1
	for i := 0; i < ndim; i++ {
		d := int(hdr.Dim[i+1])
		if d < 1 {
			d = 1
		}
		shape[i] = d
		n *= d
	}

	// Skip the gap between the header and the voxel data.
	if pad := int64(hdr.VoxOffset) - headerSize; pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nil, fmt.Errorf("failed to skip to voxel data: %w", err)
		}
	}

	data, err := readData(r, order, int(hdr.Datatype), n)
	if err != nil {
		return nil, err
	}

	// A slope of zero means "no scaling" in NIfTI-1.
	slope := float64(hdr.SclSlope)
	inter := float64(hdr.SclInter)
	if slope != 0 && (slope != 1 || inter != 0) {
		for i := range data {
			data[i] = data[i]*slope + inter
		}
	}

	voxelSize := [3]float64{
		float64(hdr.Pixdim[1]),
		float64(hdr.Pixdim[2]),
		float64(hdr.Pixdim[3]),
	}

	return models.NewVolume(data, shape, voxelSize)
}

// readData reads n voxels of the given NIfTI datatype and converts them
// to float64.
func readData(r io.Reader, order binary.ByteOrder, datatype, n int) ([]float64, error) {
	out := make([]float64, n)

	switch datatype {
	case typeUint8:
		buf := make([]uint8, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case typeInt8:
		buf := make([]int8, n)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case typeInt16:
		buf := make([]int16, n)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case typeUint16:
		buf := make([]uint16, n)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case typeInt32:
		buf := make([]int32, n)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case typeFloat32:
		buf := make([]float32, n)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case typeFloat64:
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("failed to read voxel data: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported NIfTI datatype %d", datatype)
	}

	return out, nil
}

// WriteMask saves a binary mask as a uint8 NIfTI-1 image with the geometry
// of the given source volume. Paths ending in .gz are gzip-compressed.
func WriteMask(path string, mask []uint8, shape [3]int, voxelSize [3]float64) error {
	n := shape[0] * shape[1] * shape[2]
	if len(mask) != n {
		return fmt.Errorf("mask length %d does not match shape %v", len(mask), shape)
	}

	var hdr header
	hdr.SizeofHdr = headerSize
	hdr.Dim[0] = 3
	hdr.Dim[1] = int16(shape[0])
	hdr.Dim[2] = int16(shape[1])
	hdr.Dim[3] = int16(shape[2])
	for i := 4; i < 8; i++ {
		hdr.Dim[i] = 1
	}
	hdr.Datatype = typeUint8
	hdr.Bitpix = 8
	hdr.Pixdim[0] = 1
	hdr.Pixdim[1] = float32(voxelSize[0])
	hdr.Pixdim[2] = float32(voxelSize[1])
	hdr.Pixdim[3] = float32(voxelSize[2])
	hdr.VoxOffset = headerSize + 4
	hdr.SclSlope = 1
	hdr.CalMax = 1
	copy(hdr.Descrip[:], "selection mask")
	copy(hdr.Magic[:], "n+1\x00")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mask file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("failed to write mask header: %w", err)
	}
	// The four-byte extension flag that pads the header to vox_offset.
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return fmt.Errorf("failed to write mask header: %w", err)
	}
	if _, err := w.Write(mask); err != nil {
		return fmt.Errorf("failed to write mask data: %w", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	return nil
}
