package dicomimage

import (
	"image"
	"image/color"
	"math"

	dicom "github.com/odincare/dicomancer"
	"github.com/pkg/errors"
)

// RenderOptions 控制灰度图像的窗宽窗位
type RenderOptions struct {
	// Window overrides the WindowCenter/WindowWidth stored in the file.
	Window *Window
	// IgnoreFileWindow renders over the full dynamic range even when the file
	// carries a window.
	IgnoreFileWindow bool
}

// Raster is an 8 bit RGBA image, 4 bytes per pixel, rows top to bottom.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// Image wraps the raster without copying.
func (r *Raster) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pix,
		Stride: 4 * r.Width,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// RenderDataSet decodes the first frame of ds and renders it.
func RenderDataSet(ds *dicom.DataSet, opts RenderOptions) (*Raster, error) {
	f, err := DecodeFirstFrame(ds)
	if err != nil {
		return nil, err
	}
	return Render(f, opts)
}

// Render converts f to RGBA. The raster always has f.Columns x f.Rows pixels.
func Render(f *Frame, opts RenderOptions) (*Raster, error) {
	n := f.Pixels()
	if n <= 0 || len(f.Samples) < n*f.SamplesPerPixel {
		return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "%d samples for %dx%d", len(f.Samples), f.Columns, f.Rows)
	}
	r := &Raster{Width: f.Columns, Height: f.Rows, Pix: make([]byte, 4*n)}

	switch f.Photometric {
	case Monochrome1, Monochrome2:
		if f.SamplesPerPixel != 1 {
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "SamplesPerPixel %d for %s", f.SamplesPerPixel, f.Photometric)
		}
		win := opts.Window
		if win == nil && !opts.IgnoreFileWindow {
			win = f.Window
		}
		if win != nil && win.Width < 1 {
			win = nil
		}
		gray := renderGray(f, win)
		for i, v := range gray {
			r.set(i, v, v, v)
		}
	case RGB, YBRFull:
		if f.SamplesPerPixel != 3 {
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "SamplesPerPixel %d for %s", f.SamplesPerPixel, f.Photometric)
		}
		ch := [3][]uint8{}
		for c := range ch {
			ch[c] = renderChannel(f, c)
		}
		for i := 0; i < n; i++ {
			if f.Photometric == YBRFull {
				red, green, blue := color.YCbCrToRGB(ch[0][i], ch[1][i], ch[2][i])
				r.set(i, red, green, blue)
				continue
			}
			r.set(i, ch[0][i], ch[1][i], ch[2][i])
		}
	case PaletteColor:
		if f.Palette == nil || f.SamplesPerPixel != 1 {
			return nil, errors.Wrap(dicom.ErrIncompleteImageMetadata, "palette color image without lookup tables")
		}
		for i := 0; i < n; i++ {
			red, green, blue := f.Palette.Lookup(f.Samples[i])
			r.set(i, red, green, blue)
		}
	default:
		return nil, errors.Wrapf(dicom.ErrUnsupportedPixelCodec, "photometric interpretation %q", f.Photometric)
	}
	return r, nil
}

func (r *Raster) set(i int, red, green, blue uint8) {
	p := r.Pix[4*i : 4*i+4 : 4*i+4]
	p[0], p[1], p[2], p[3] = red, green, blue, 0xff
}

// renderGray maps one grayscale sample per pixel to 0..255.
func renderGray(f *Frame, win *Window) []uint8 {
	n := f.Pixels()
	out := make([]uint8, n)
	identity := f.RescaleSlope == 1 && f.RescaleIntercept == 0
	switch {
	case win != nil:
		for i := 0; i < n; i++ {
			out[i] = voi(float64(f.Samples[i])*f.RescaleSlope+f.RescaleIntercept, *win)
		}
	case f.BitsAllocated == 1 && identity:
		for i := 0; i < n; i++ {
			if f.Samples[i] != 0 {
				out[i] = 0xff
			}
		}
	case f.BitsStored == 8 && f.PixelRepresentation == 0 && identity:
		for i := 0; i < n; i++ {
			out[i] = uint8(f.Samples[i])
		}
	default:
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(f.Samples[i])*f.RescaleSlope + f.RescaleIntercept
		}
		normalize(values, out)
	}
	if f.Photometric == Monochrome1 {
		for i := range out {
			out[i] = 0xff - out[i]
		}
	}
	return out
}

// voi is the linear VOI LUT function. PS3.3 C.11.2.1.2.1
func voi(x float64, w Window) uint8 {
	c := w.Center - 0.5
	half := (w.Width - 1) / 2
	switch {
	case x <= c-half:
		return 0
	case x > c+half:
		return 0xff
	}
	return clamp8(((x-c)/(w.Width-1) + 0.5) * 255)
}

// renderChannel extracts color channel c, honoring PlanarConfiguration.
// Samples deeper than 8 bits are stretched over the channel's own range.
func renderChannel(f *Frame, c int) []uint8 {
	n := f.Pixels()
	at := func(i int) int64 { return f.Samples[i*3+c] }
	if f.PlanarConfiguration == 1 {
		at = func(i int) int64 { return f.Samples[c*n+i] }
	}
	out := make([]uint8, n)
	if f.BitsStored <= 8 && f.PixelRepresentation == 0 {
		for i := range out {
			out[i] = uint8(at(i))
		}
		return out
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(at(i))
	}
	normalize(values, out)
	return out
}

// normalize 把 values 线性拉伸到 0..255; 常数图像全部为 0
func normalize(values []float64, out []uint8) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return
	}
	for i, v := range values {
		out[i] = clamp8((v - lo) / (hi - lo) * 255)
	}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
