package dicomimage

import (
	"encoding/binary"

	dicom "github.com/odincare/dicomancer"
	"github.com/pkg/errors"
)

// rleCodec decodes RLE Lossless frames, PS3.5 Annex G.
//
// A frame starts with a 64 byte header: the number of segments followed by
// 15 segment offsets, all uint32 little endian. Segment k holds byte k of
// every sample, most significant byte first, sample by sample. Each segment
// is PackBits encoded.
type rleCodec struct{}

const (
	rleHeaderLen     = 64
	maxPackBitsRatio = 64
)

func (rleCodec) Decode(data []byte, g Geometry) ([]byte, Geometry, error) {
	if len(data) < rleHeaderLen {
		return nil, g, errors.Wrapf(dicom.ErrTruncatedStream, "rle: header needs %d bytes, have %d", rleHeaderLen, len(data))
	}
	bytesPerSample := g.BitsAllocated / 8
	if g.BitsAllocated == 1 || bytesPerSample == 0 {
		return nil, g, errors.Wrapf(dicom.ErrUnsupportedPixelCodec, "rle: BitsAllocated %d", g.BitsAllocated)
	}
	numSegments := int(binary.LittleEndian.Uint32(data))
	want := bytesPerSample * g.SamplesPerPixel
	if numSegments != want || numSegments > 15 {
		return nil, g, errors.Errorf("rle: %d segments, expected %d", numSegments, want)
	}
	offsets := make([]int, numSegments+1)
	for i := 0; i < numSegments; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(data[4+4*i:]))
	}
	offsets[numSegments] = len(data)

	pixels := g.Pixels()
	for seg := 0; seg < numSegments; seg++ {
		start, end := offsets[seg], offsets[seg+1]
		if start < rleHeaderLen || start > end || end > len(data) {
			return nil, g, errors.Errorf("rle: segment %d spans [%d,%d) in %d bytes", seg, start, end, len(data))
		}
		// A replicate run packs at most 128 bytes into 2, so a segment can
		// never expand past 64 times its encoded length.
		if pixels > maxPackBitsRatio*(end-start) {
			return nil, g, errors.Wrapf(dicom.ErrTruncatedStream, "rle: segment %d holds %d bytes, cannot expand to %d", seg, end-start, pixels)
		}
	}

	out := make([]byte, pixels*want)
	for seg := 0; seg < numSegments; seg++ {
		plane, err := decodePackBits(data[offsets[seg]:offsets[seg+1]], pixels)
		if err != nil {
			return nil, g, err
		}
		if len(plane) < pixels {
			return nil, g, errors.Wrapf(dicom.ErrTruncatedStream, "rle: segment %d decodes to %d bytes, want %d", seg, len(plane), pixels)
		}
		sample, msb := seg/bytesPerSample, seg%bytesPerSample
		// Little endian output: the most significant byte goes last.
		shift := sample*bytesPerSample + bytesPerSample - 1 - msb
		for i := 0; i < pixels; i++ {
			out[i*want+shift] = plane[i]
		}
	}
	g.PlanarConfiguration = 0
	return out, g, nil
}

// decodePackBits expands one PackBits segment. Decoding stops once
// expectedLen bytes are produced; trailing padding is ignored.
func decodePackBits(data []byte, expectedLen int) ([]byte, error) {
	out := make([]byte, 0, expectedLen)
	i := 0
	for i < len(data) && len(out) < expectedLen {
		n := int8(data[i])
		i++
		switch {
		case n == -128:
			// no-op
		case n >= 0:
			// Literal run: read n+1 bytes
			count := int(n) + 1
			if i+count > len(data) {
				return nil, errors.Wrapf(dicom.ErrTruncatedStream, "rle: literal run of %d at %d", count, i)
			}
			out = append(out, data[i:i+count]...)
			i += count
		default:
			// Replicate run: repeat the next byte -n+1 times
			if i >= len(data) {
				return nil, errors.Wrap(dicom.ErrTruncatedStream, "rle: replicate run without value")
			}
			for k := 0; k < int(-n)+1; k++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
