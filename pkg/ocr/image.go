package ocr

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// Color modes reported by ColorMode.
const (
	ModeRGB   = "RGB"
	ModeRGBA  = "RGBA"
	ModeGray  = "L"
	ModePal   = "P"
	ModeCMYK  = "CMYK"
	ModeOther = "other"
)

// LoadImage decodes a PNG, JPEG, GIF, BMP or TIFF file. Only the first
// frame of animated or multi-page files is read.
func LoadImage(path string) (image.Image, error) {
	return imaging.Open(path)
}

// ColorMode classifies the pixel layout of a decoded image.
func ColorMode(img image.Image) string {
	switch m := img.(type) {
	case *image.YCbCr:
		return ModeRGB
	case *image.RGBA:
		if m.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.RGBA64:
		if m.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.NRGBA:
		if m.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.NRGBA64:
		if m.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.NYCbCrA:
		return ModeRGBA
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.Paletted:
		return ModePal
	case *image.CMYK:
		return ModeCMYK
	}
	return ModeOther
}

// Normalize returns img as an opaque 8-bit RGB raster. Gray and palette
// images are expanded to three channels; an alpha channel is dropped
// without compositing.
func Normalize(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	if ColorMode(img) == ModeRGB {
		return out
	}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// encodePNG serializes a normalized raster for the backend.
func encodePNG(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
