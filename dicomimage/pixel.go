// Package dicomimage extracts the first frame of a DICOM image and renders it
// to an RGBA raster.
package dicomimage

import (
	"encoding/binary"
	"strings"

	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomlog"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/pkg/errors"
)

// Photometric interpretations handled by Render. PS3.3 C.7.6.3.1.2
const (
	Monochrome1  = "MONOCHROME1"
	Monochrome2  = "MONOCHROME2"
	RGB          = "RGB"
	PaletteColor = "PALETTE COLOR"
	YBRFull      = "YBR_FULL"
	YBRFull422   = "YBR_FULL_422"
)

// Geometry 描述一帧图像的布局
type Geometry struct {
	Rows                int
	Columns             int
	SamplesPerPixel     int
	BitsAllocated       int
	BitsStored          int
	PixelRepresentation int // 0 unsigned, 1 two's complement
	PlanarConfiguration int // 0 interleaved, 1 one plane per sample
	Photometric         string
	NumberOfFrames      int
}

// Pixels is the number of pixels in one frame.
func (g Geometry) Pixels() int { return g.Rows * g.Columns }

// FrameLen is the number of bytes one native frame occupies.
func (g Geometry) FrameLen() int {
	samples := g.Pixels() * g.SamplesPerPixel
	if g.Photometric == YBRFull422 {
		// Two luminance samples share one Cb and one Cr.
		samples = g.Pixels() * 2
	}
	if g.BitsAllocated == 1 {
		return (samples + 7) / 8
	}
	return samples * (g.BitsAllocated / 8)
}

// Frame is the first frame of a data set, unpacked into one sample per
// entry. Color samples keep the interleaved/planar order of
// Geometry.PlanarConfiguration.
type Frame struct {
	Geometry
	Samples []int64

	// Modality LUT, PS3.3 C.11.1. Slope is 1 when absent.
	RescaleSlope     float64
	RescaleIntercept float64
	// Window is the first WindowCenter/WindowWidth pair of the file, nil when
	// absent or unusable.
	Window *Window
	// Palette is set for PALETTE COLOR images.
	Palette *Palette
}

// Window is a VOI window, PS3.3 C.11.2.1.2.
type Window struct {
	Center float64
	Width  float64
}

func intAttr(ds *dicom.DataSet, tag dicomtag.Tag) (int, bool) {
	elem, err := ds.FindElementByTag(tag)
	if err != nil {
		return 0, false
	}
	v, err := elem.GetInt()
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func floatAttr(ds *dicom.DataSet, tag dicomtag.Tag) (float64, bool) {
	elem, err := ds.FindElementByTag(tag)
	if err != nil {
		return 0, false
	}
	v, err := elem.GetFloat()
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadGeometry collects the Image Pixel module attributes of ds. Rows,
// Columns, BitsAllocated, SamplesPerPixel and PhotometricInterpretation are
// required; PlanarConfiguration defaults to interleaved.
func ReadGeometry(ds *dicom.DataSet) (Geometry, error) {
	var g Geometry
	var missing []string
	required := func(tag dicomtag.Tag, dst *int) {
		v, ok := intAttr(ds, tag)
		if !ok || v <= 0 {
			missing = append(missing, dicomtag.Alias(tag))
			return
		}
		*dst = v
	}
	required(dicomtag.Rows, &g.Rows)
	required(dicomtag.Columns, &g.Columns)
	required(dicomtag.BitsAllocated, &g.BitsAllocated)
	required(dicomtag.SamplesPerPixel, &g.SamplesPerPixel)
	if s, ok := ds.Text(dicomtag.PhotometricInterpretation); ok {
		g.Photometric = strings.ToUpper(s)
	} else {
		missing = append(missing, dicomtag.Alias(dicomtag.PhotometricInterpretation))
	}
	if len(missing) > 0 {
		return g, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "missing %s", strings.Join(missing, ", "))
	}
	switch g.BitsAllocated {
	case 1, 8, 16, 32:
	default:
		return g, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "BitsAllocated %d", g.BitsAllocated)
	}
	g.BitsStored = g.BitsAllocated
	if v, ok := intAttr(ds, dicomtag.BitsStored); ok && v > 0 && v <= g.BitsAllocated {
		g.BitsStored = v
	}
	g.PixelRepresentation, _ = intAttr(ds, dicomtag.PixelRepresentation)
	g.PlanarConfiguration, _ = intAttr(ds, dicomtag.PlanarConfiguration)
	g.NumberOfFrames = 1
	if v, ok := intAttr(ds, dicomtag.NumberOfFrames); ok && v > 0 {
		g.NumberOfFrames = v
	}
	return g, nil
}

// DecodeFirstFrame locates PixelData and unpacks its first frame. Encapsulated
// data goes through the codec registered for the data set's transfer syntax.
func DecodeFirstFrame(ds *dicom.DataSet) (*Frame, error) {
	elem, err := ds.FindElementByTag(dicomtag.PixelData)
	if err != nil {
		return nil, dicom.ErrNoPixelData
	}
	info, err := elem.GetPixelDataInfo()
	if err != nil {
		return nil, errors.Wrap(dicom.ErrNoPixelData, err.Error())
	}
	g, err := ReadGeometry(ds)
	if err != nil {
		return nil, err
	}

	var (
		data []byte
		bo   = ds.TransferSyntax.ByteOrder
	)
	if info.Encapsulated {
		codec, ok := LookupCodec(ds.TransferSyntax.UID)
		if !ok {
			return nil, errors.Wrapf(dicom.ErrUnsupportedPixelCodec, "%s", ds.TransferSyntax.Name())
		}
		fragment, err := firstFrameFragments(info, g.NumberOfFrames)
		if err != nil {
			return nil, err
		}
		if data, g, err = codec.Decode(fragment, g); err != nil {
			return nil, err
		}
		// Codecs emit little endian samples.
		bo = binary.LittleEndian
	} else {
		data = info.Native
	}
	if bo == nil {
		bo = binary.LittleEndian
	}
	if g.Photometric == YBRFull422 && g.BitsAllocated != 8 {
		return nil, errors.Wrapf(dicom.ErrUnsupportedPixelCodec, "%s with BitsAllocated %d", YBRFull422, g.BitsAllocated)
	}
	n := g.FrameLen()
	if len(data) < n {
		return nil, errors.Wrapf(dicom.ErrTruncatedStream, "frame needs %d bytes, pixel data holds %d", n, len(data))
	}
	data = data[:n]
	if g.Photometric == YBRFull422 && g.BitsAllocated == 8 {
		data, g = expand422(data, g)
	}

	samples, err := unpackSamples(data, g, bo)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		Geometry:     g,
		Samples:      samples,
		RescaleSlope: 1,
	}
	if v, ok := floatAttr(ds, dicomtag.RescaleSlope); ok && v != 0 {
		f.RescaleSlope = v
	}
	f.RescaleIntercept, _ = floatAttr(ds, dicomtag.RescaleIntercept)
	center, okC := floatAttr(ds, dicomtag.WindowCenter)
	width, okW := floatAttr(ds, dicomtag.WindowWidth)
	if okC && okW && width >= 1 {
		f.Window = &Window{Center: center, Width: width}
	}
	if g.Photometric == PaletteColor {
		if f.Palette, err = ReadPalette(ds); err != nil {
			return nil, err
		}
	}
	dicomlog.Event(dicomlog.LevelDebug, "dicomimage: first frame decoded", dicomlog.Fields{
		"rows": g.Rows, "columns": g.Columns, "bits": g.BitsAllocated,
		"samples": g.SamplesPerPixel, "photometric": g.Photometric,
		"encapsulated": info.Encapsulated, "frames": g.NumberOfFrames,
	})
	return f, nil
}

// firstFrameFragments concatenates the fragments of frame 0. With a Basic
// Offset Table the frame ends where the second entry points; without one a
// single-frame image owns every fragment and a multi-frame image is assumed
// to carry one fragment per frame.
func firstFrameFragments(info *dicom.PixelDataInfo, frames int) ([]byte, error) {
	if len(info.Fragments) == 0 {
		return nil, errors.Wrap(dicom.ErrNoPixelData, "encapsulated pixel data has no fragments")
	}
	var selected [][]byte
	switch {
	case len(info.Offsets) > 1:
		start, end := info.Offsets[0], info.Offsets[1]
		pos := uint32(0)
		for _, f := range info.Fragments {
			if pos >= start && pos < end {
				selected = append(selected, f)
			}
			// Each fragment item carries an 8 byte header.
			pos += 8 + uint32(len(f))
		}
	case frames > 1:
		selected = info.Fragments[:1]
	default:
		selected = info.Fragments
	}
	if len(selected) == 1 {
		return selected[0], nil
	}
	var buf []byte
	for _, f := range selected {
		buf = append(buf, f...)
	}
	return buf, nil
}

// unpackSamples converts raw frame bytes to one integer per sample, masking
// to BitsStored and sign extending two's complement samples.
func unpackSamples(data []byte, g Geometry, bo binary.ByteOrder) ([]int64, error) {
	count := g.Pixels() * g.SamplesPerPixel
	need := count * (g.BitsAllocated / 8)
	if g.BitsAllocated == 1 {
		need = (count + 7) / 8
	}
	if len(data) < need {
		return nil, errors.Wrapf(dicom.ErrTruncatedStream, "%d samples need %d bytes, frame holds %d", count, need, len(data))
	}
	samples := make([]int64, count)
	var raw func(i int) uint64
	switch g.BitsAllocated {
	case 1:
		// PS3.5 8.1.1: the first pixel sits in the least significant bit.
		raw = func(i int) uint64 { return uint64(data[i/8]>>(uint(i)%8)) & 1 }
	case 8:
		raw = func(i int) uint64 { return uint64(data[i]) }
	case 16:
		raw = func(i int) uint64 { return uint64(bo.Uint16(data[2*i:])) }
	case 32:
		raw = func(i int) uint64 { return uint64(bo.Uint32(data[4*i:])) }
	}
	stored := uint(g.BitsStored)
	mask := uint64(1)<<stored - 1
	for i := range samples {
		v := raw(i) & mask
		if g.PixelRepresentation == 1 && stored > 1 && v&(1<<(stored-1)) != 0 {
			samples[i] = int64(v) - int64(1)<<stored
			continue
		}
		samples[i] = int64(v)
	}
	return samples, nil
}

// expand422 turns horizontally subsampled Y Y Cb Cr groups into full
// interleaved YBR_FULL triples. PS3.3 C.7.6.3.1.2
func expand422(data []byte, g Geometry) ([]byte, Geometry) {
	size := g.Pixels() * 3
	out := make([]byte, 0, size)
	cb, cr := byte(128), byte(128)
	i := 0
	for ; i+3 < len(data) && len(out) < size; i += 4 {
		cb, cr = data[i+2], data[i+3]
		out = append(out, data[i], cb, cr)
		if len(out) < size {
			out = append(out, data[i+1], cb, cr)
		}
	}
	// An odd last pixel has no group of its own; it keeps the previous chroma.
	if len(out) < size && i < len(data) {
		out = append(out, data[i], cb, cr)
	}
	g.Photometric = YBRFull
	g.SamplesPerPixel = 3
	g.PlanarConfiguration = 0
	return out, g
}
