package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomimage"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// fitBox scales img down, keeping its aspect ratio, so that it fits in a
// size x size box. Images already inside the box are returned as is.
func fitBox(img image.Image, size int) image.Image {
	b := img.Bounds()
	if size <= 0 || (b.Dx() <= size && b.Dy() <= size) {
		return img
	}
	w, h := size, b.Dy()*size/b.Dx()
	if b.Dy() > b.Dx() {
		w, h = b.Dx()*size/b.Dy(), size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// drawLabel writes text in the top left corner, white on a black band.
func drawLabel(img image.Image, text string) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 4
	if width > b.Dx() {
		width = b.Dx()
	}
	band := image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Min.Y+face.Height+2)
	draw.Draw(dst, band, image.NewUniform(color.Black), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		// Baseline one ascent below the top edge.
		Dot: fixed.P(b.Min.X+2, b.Min.Y+1+face.Ascent),
	}
	d.DrawString(text)
	return dst
}

// previewName 用 SOPInstanceUID 命名, 缺失时退回到源文件名
func previewName(n *dicom.Node) string {
	name := n.ID
	if name == "" || name == dicom.UnknownID {
		name = strings.TrimSuffix(filepath.Base(n.Source), filepath.Ext(n.Source))
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name) + ".png"
}

func writePreview(dir string, n *dicom.Node, r *dicomimage.Raster, size int, caption string) (string, error) {
	var img image.Image = r.Image()
	img = fitBox(img, size)
	if caption != "" {
		img = drawLabel(img, caption)
	}
	path := filepath.Join(dir, previewName(n))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", errors.Wrap(err, path)
	}
	return path, f.Close()
}
