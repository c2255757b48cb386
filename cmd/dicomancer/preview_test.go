package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitBox(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	assert.Equal(t, image.Rect(0, 0, 100, 25), fitBox(img, 100).Bounds())
	assert.Equal(t, image.Rect(0, 0, 50, 200), fitBox(image.NewRGBA(image.Rect(0, 0, 100, 400)), 200).Bounds())
	assert.Same(t, img, fitBox(img, 0))
	assert.Same(t, img, fitBox(img, 1000))
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	out := drawLabel(img, "CT").(*image.RGBA)
	assert.Equal(t, img.Bounds(), out.Bounds())
	// Below the band the source is untouched.
	assert.Equal(t, color.RGBA{0x80, 0x80, 0x80, 0x80}, out.RGBAAt(60, 30))

	white := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 20; x++ {
			if out.RGBAAt(x, y) == (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				white++
			}
		}
	}
	assert.NotZero(t, white)
}

func TestPreviewName(t *testing.T) {
	assert.Equal(t, "1.2.3.png", previewName(&dicom.Node{ID: "1.2.3", Source: "a/b.dcm"}))
	assert.Equal(t, "b.png", previewName(&dicom.Node{ID: dicom.UnknownID, Source: "a/b.dcm"}))
	assert.Equal(t, "x_y.png", previewName(&dicom.Node{ID: "x/y"}))
}

func TestWritePreview(t *testing.T) {
	dir := t.TempDir()
	r := &dicomimage.Raster{Width: 2, Height: 1, Pix: []byte{0, 0, 0, 255, 255, 255, 255, 255}}
	path, err := writePreview(dir, &dicom.Node{ID: "9.9"}, r, 0, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "9.9.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	red, _, _, _ := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), red)
}
