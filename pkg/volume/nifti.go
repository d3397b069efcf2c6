package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// NIfTI-1 single-file header layout
const (
	niftiHeaderSize = 348
	niftiDataOffset = 352

	offDim       = 40
	offDatatype  = 70
	offBitpix    = 72
	offPixdim    = 76
	offVoxOffset = 108
	offSclSlope  = 112
	offSclInter  = 116
	offQformCode = 252
	offSformCode = 254
	offQuaternB  = 256
	offQoffsetX  = 268
	offSrowX     = 280
	offMagic     = 344
)

// NIfTI datatype codes
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
	dtUint32  = 768
	dtInt64   = 1024
	dtUint64  = 1280
)

var bytesPerVoxel = map[int16]int{
	dtUint8:   1,
	dtInt8:    1,
	dtInt16:   2,
	dtUint16:  2,
	dtInt32:   4,
	dtUint32:  4,
	dtFloat32: 4,
	dtInt64:   8,
	dtUint64:  8,
	dtFloat64: 8,
}

// Load reads a NIfTI-1 image (.nii or .nii.gz) into a Volume.
// Only three-dimensional images are accepted; a trailing singleton fourth
// dimension is tolerated.
func Load(path string) (*Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = bufio.NewReader(file)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	v, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return v, nil
}

// Decode parses an uncompressed NIfTI-1 stream
func Decode(r io.Reader) (*Volume, error) {
	hdr := make([]byte, niftiHeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var order binary.ByteOrder = binary.LittleEndian
	switch {
	case binary.LittleEndian.Uint32(hdr[0:4]) == niftiHeaderSize:
	case binary.BigEndian.Uint32(hdr[0:4]) == niftiHeaderSize:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a NIfTI-1 header (sizeof_hdr=%d)", binary.LittleEndian.Uint32(hdr[0:4]))
	}

	magic := string(hdr[offMagic : offMagic+3])
	if magic != "n+1" {
		return nil, fmt.Errorf("unsupported NIfTI magic %q (only single-file n+1 images are read)", magic)
	}

	i16 := func(off int) int16 { return int16(order.Uint16(hdr[off : off+2])) }
	f32 := func(off int) float64 { return float64(math.Float32frombits(order.Uint32(hdr[off : off+4]))) }

	ndim := int(i16(offDim))
	if ndim < 3 || ndim > 7 {
		return nil, fmt.Errorf("expected a 3-D image, header has %d dimensions", ndim)
	}
	var shape Shape
	for i := 0; i < 3; i++ {
		shape[i] = int(i16(offDim + 2*(i+1)))
		if shape[i] <= 0 {
			return nil, fmt.Errorf("invalid extent %d on axis %d", shape[i], i)
		}
	}
	for i := 4; i <= ndim; i++ {
		if extent := i16(offDim + 2*i); extent > 1 {
			return nil, fmt.Errorf("expected a 3-D image, dim[%d]=%d", i, extent)
		}
	}

	datatype := i16(offDatatype)
	width, ok := bytesPerVoxel[datatype]
	if !ok {
		return nil, fmt.Errorf("unsupported NIfTI datatype %d", datatype)
	}

	voxOffset := int64(f32(offVoxOffset))
	if voxOffset < niftiHeaderSize {
		voxOffset = niftiDataOffset
	}
	// Skip the extension flag and any header extensions
	if _, err := io.CopyN(io.Discard, r, voxOffset-niftiHeaderSize); err != nil {
		return nil, fmt.Errorf("skipping header extensions: %w", err)
	}

	raw := make([]byte, shape.Len()*width)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading %d voxels: %w", shape.Len(), err)
	}

	slope, inter := f32(offSclSlope), f32(offSclInter)
	if slope == 0 || math.IsNaN(slope) {
		slope, inter = 1, 0
	}
	if math.IsNaN(inter) {
		inter = 0
	}

	v := &Volume{Shape: shape, Data: make([]float64, shape.Len())}
	for i := range v.Data {
		v.Data[i] = decodeVoxel(raw[i*width:(i+1)*width], datatype, order)*slope + inter
	}
	v.Affine = headerAffine(hdr, order)
	return v, nil
}

func decodeVoxel(b []byte, datatype int16, order binary.ByteOrder) float64 {
	switch datatype {
	case dtUint8:
		return float64(b[0])
	case dtInt8:
		return float64(int8(b[0]))
	case dtInt16:
		return float64(int16(order.Uint16(b)))
	case dtUint16:
		return float64(order.Uint16(b))
	case dtInt32:
		return float64(int32(order.Uint32(b)))
	case dtUint32:
		return float64(order.Uint32(b))
	case dtFloat32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case dtInt64:
		return float64(int64(order.Uint64(b)))
	case dtUint64:
		return float64(order.Uint64(b))
	case dtFloat64:
		return math.Float64frombits(order.Uint64(b))
	}
	return math.NaN()
}

// headerAffine prefers the sform, then the qform, then plain voxel scaling
func headerAffine(hdr []byte, order binary.ByteOrder) Affine {
	f32 := func(off int) float64 { return float64(math.Float32frombits(order.Uint32(hdr[off : off+4]))) }
	sform := int16(order.Uint16(hdr[offSformCode : offSformCode+2]))
	qform := int16(order.Uint16(hdr[offQformCode : offQformCode+2]))

	var pixdim [8]float64
	for i := range pixdim {
		pixdim[i] = f32(offPixdim + 4*i)
	}

	a := IdentityAffine()
	switch {
	case sform > 0:
		for row := 0; row < 3; row++ {
			for col := 0; col < 4; col++ {
				a[row][col] = f32(offSrowX + 16*row + 4*col)
			}
		}
	case qform > 0:
		b, c, d := f32(offQuaternB), f32(offQuaternB+4), f32(offQuaternB+8)
		aa := 1 - (b*b + c*c + d*d)
		if aa < 0 {
			aa = 0
		}
		qa := math.Sqrt(aa)
		qfac := pixdim[0]
		if qfac == 0 {
			qfac = 1
		}
		rot := [3][3]float64{
			{qa*qa + b*b - c*c - d*d, 2 * (b*c - qa*d), 2 * (b*d + qa*c)},
			{2 * (b*c + qa*d), qa*qa + c*c - b*b - d*d, 2 * (c*d - qa*b)},
			{2 * (b*d - qa*c), 2 * (c*d + qa*b), qa*qa + d*d - c*c - b*b},
		}
		scale := [3]float64{pixdim[1], pixdim[2], pixdim[3] * qfac}
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				a[row][col] = rot[row][col] * scale[col]
			}
			a[row][3] = f32(offQoffsetX + 4*row)
		}
	default:
		for i := 0; i < 3; i++ {
			if pixdim[i+1] != 0 {
				a[i][i] = pixdim[i+1]
			}
		}
	}
	return a
}

// Save writes v as an uncompressed little-endian float32 NIfTI-1 image with
// its affine stored as the sform.
func Save(path string, v *Volume) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := Encode(w, v); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

// Encode writes v as a float32 NIfTI-1 stream
func Encode(w io.Writer, v *Volume) error {
	le := binary.LittleEndian
	hdr := make([]byte, niftiDataOffset)
	le.PutUint32(hdr[0:4], niftiHeaderSize)
	le.PutUint16(hdr[offDim:], 3)
	for i := 0; i < 3; i++ {
		le.PutUint16(hdr[offDim+2*(i+1):], uint16(v.Shape[i]))
	}
	for i := 4; i < 8; i++ {
		le.PutUint16(hdr[offDim+2*i:], 1)
	}
	le.PutUint16(hdr[offDatatype:], dtFloat32)
	le.PutUint16(hdr[offBitpix:], 32)
	le.PutUint32(hdr[offPixdim:], math.Float32bits(1))
	for i := 0; i < 3; i++ {
		le.PutUint32(hdr[offPixdim+4*(i+1):], math.Float32bits(float32(v.Affine[i][i])))
	}
	le.PutUint32(hdr[offVoxOffset:], math.Float32bits(niftiDataOffset))
	le.PutUint32(hdr[offSclSlope:], math.Float32bits(1))
	le.PutUint16(hdr[offSformCode:], 2)
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			le.PutUint32(hdr[offSrowX+16*row+4*col:], math.Float32bits(float32(v.Affine[row][col])))
		}
	}
	copy(hdr[offMagic:], "n+1\x00")

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	buf := make([]byte, 4)
	for _, value := range v.Data {
		le.PutUint32(buf, math.Float32bits(float32(value)))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
