package imagesvc

import (
	"errors"
	"fmt"
	"math"

	"github.com/mkrupp/imagepipe/internal/domain"
	"golang.org/x/image/math/f64"
)

// ErrInvalidAngle is returned for rotation angles that are not finite.
var ErrInvalidAngle = errors.New("invalid rotation angle")

const snapEpsilon = 1e-9

// snap rounds v to the nearest integer when float error is all that separates them.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEpsilon {
		return r
	}

	return v
}

// RotatedSize returns the canvas a width x height raster needs to be rotated by
// degrees without clipping.
func RotatedSize(width, height int, degrees float64) (int, int) {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	sin, cos = math.Abs(snap(sin)), math.Abs(snap(cos))

	w, h := float64(width), float64(height)

	newWidth := int(math.Ceil(snap(w*cos + h*sin)))
	newHeight := int(math.Ceil(snap(w*sin + h*cos)))

	return max(1, newWidth), max(1, newHeight)
}

// rotationMatrix maps source coordinates to canvas coordinates: the source center is
// moved to the origin, rotated clockwise by degrees and moved to the canvas center.
func rotationMatrix(raster domain.Raster, degrees float64, canvasWidth, canvasHeight int) f64.Aff3 {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	sin, cos = snap(sin), snap(cos)

	bounds := raster.Bounds()
	offsetX := -(float64(bounds.Min.X) + float64(bounds.Dx())/2)
	offsetY := -(float64(bounds.Min.Y) + float64(bounds.Dy())/2)
	centerX := float64(canvasWidth) / 2
	centerY := float64(canvasHeight) / 2

	return f64.Aff3{
		cos, -sin, cos*offsetX - sin*offsetY + centerX,
		sin, cos, sin*offsetX + cos*offsetY + centerY,
	}
}

// Rotate turns raster clockwise by degrees around its center. The canvas grows to
// the rotated bounding box so no pixel is clipped; uncovered corners are transparent.
func Rotate(renderer Renderer, raster domain.Raster, degrees float64) (domain.Raster, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return domain.Raster{}, fmt.Errorf("%w: %v", ErrInvalidAngle, degrees)
	}

	if raster.IsZero() {
		return domain.Raster{}, domain.ErrEmptyRaster
	}

	width, height := RotatedSize(raster.Width(), raster.Height(), degrees)
	matrix := rotationMatrix(raster, degrees, width, height)

	rotated, err := renderer.Draw(raster, Transform{Width: width, Height: height, Matrix: &matrix})
	if err != nil {
		return domain.Raster{}, fmt.Errorf("draw rotated %dx%d: %w", width, height, err)
	}

	return rotated, nil
}
