package imagesvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/mkrupp/imagepipe/internal/domain"
	"golang.org/x/image/draw"
)

// ErrInvalidQuality is returned for quality factors outside (0,1].
var ErrInvalidQuality = errors.New("quality must be in (0,1]")

// jpegQuality maps a quality factor in (0,1] onto the encoder's 1-100 scale.
func jpegQuality(quality float64) int {
	return min(100, max(1, int(math.Round(quality*100))))
}

// Compress encodes raster as JPEG at the given quality factor. Transparent pixels are
// flattened onto white.
func Compress(raster domain.Raster, quality float64) (domain.EncodedImage, error) {
	return CompressOnto(raster, quality, color.White)
}

// CompressOnto encodes raster as JPEG at the given quality factor, flattening
// transparent pixels onto background.
func CompressOnto(raster domain.Raster, quality float64, background color.Color) (domain.EncodedImage, error) {
	if math.IsNaN(quality) || quality <= 0 || quality > 1 {
		return domain.EncodedImage{}, fmt.Errorf("%w: %v", ErrInvalidQuality, quality)
	}

	if raster.IsZero() {
		return domain.EncodedImage{}, domain.ErrEmptyRaster
	}

	var buffer bytes.Buffer

	err := imaging.Encode(&buffer, flatten(raster, background), imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality)))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return domain.NewEncodedImage(buffer.Bytes(), MIMETypeJPEG), nil
}

// flatten composes raster over an opaque background, since JPEG has no alpha channel.
func flatten(raster domain.Raster, background color.Color) *image.RGBA {
	bounds := raster.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), raster.Image(), bounds.Min, draw.Over)

	return canvas
}
