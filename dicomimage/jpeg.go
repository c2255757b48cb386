package dicomimage

import (
	"bytes"
	"image"
	"image/jpeg"

	dicom "github.com/odincare/dicomancer"
	"github.com/pkg/errors"
)

// jpegCodec decodes JPEG baseline and 8-bit extended frames with
// image/jpeg. 12-bit and lossless processes report ErrUnsupportedPixelCodec.
type jpegCodec struct{}

func (jpegCodec) Decode(data []byte, g Geometry) ([]byte, Geometry, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		if _, ok := err.(jpeg.UnsupportedError); ok {
			return nil, g, errors.Wrap(dicom.ErrUnsupportedPixelCodec, err.Error())
		}
		return nil, g, errors.Wrap(err, "jpeg")
	}
	b := img.Bounds()
	g.Rows, g.Columns = b.Dy(), b.Dx()
	g.BitsAllocated, g.BitsStored = 8, 8
	g.PixelRepresentation = 0
	g.PlanarConfiguration = 0

	switch m := img.(type) {
	case *image.Gray:
		if g.Photometric != Monochrome1 {
			g.Photometric = Monochrome2
		}
		g.SamplesPerPixel = 1
		out := make([]byte, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			out = append(out, m.Pix[(y-b.Min.Y)*m.Stride:(y-b.Min.Y)*m.Stride+b.Dx()]...)
		}
		return out, g, nil
	case *image.YCbCr, *image.RGBA, *image.NRGBA:
		// image/jpeg has already converted the colour space.
		g.Photometric = RGB
		g.SamplesPerPixel = 3
		out := make([]byte, 0, b.Dx()*b.Dy()*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, gr, bl, _ := m.At(x, y).RGBA()
				out = append(out, byte(r>>8), byte(gr>>8), byte(bl>>8))
			}
		}
		return out, g, nil
	}
	return nil, g, errors.Wrapf(dicom.ErrUnsupportedPixelCodec, "jpeg: %T output", img)
}
