package domain

import (
	"errors"
	"fmt"
	"image"
)

// ErrEmptyRaster is returned when an image with a zero width or height would be produced.
var ErrEmptyRaster = errors.New("raster has zero dimension")

// Raster is a decoded pixel grid. Width and height are always positive.
//
// A Raster is owned by the pipeline stage holding it. Stages never mutate the
// raster they receive; they produce a new one.
type Raster struct {
	img image.Image
}

// NewRaster wraps img, rejecting images without pixels.
func NewRaster(img image.Image) (Raster, error) {
	if img == nil {
		return Raster{}, ErrEmptyRaster
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return Raster{}, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, b.Dx(), b.Dy())
	}

	return Raster{img: img}, nil
}

// Image returns the underlying image.
func (r Raster) Image() image.Image {
	return r.img
}

// Bounds returns the pixel bounds of the raster.
func (r Raster) Bounds() image.Rectangle {
	if r.img == nil {
		return image.Rectangle{}
	}

	return r.img.Bounds()
}

// Width returns the raster width in pixels.
func (r Raster) Width() int {
	return r.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (r Raster) Height() int {
	return r.Bounds().Dy()
}

// IsZero reports whether the raster holds no image.
func (r Raster) IsZero() bool {
	return r.img == nil
}
