package imagesvc

import (
	"fmt"
	"math"

	"github.com/mkrupp/imagepipe/internal/domain"
)

// FitDimensions returns the size a width x height raster takes when shrunk into box
// with its aspect ratio kept. Rasters that already fit keep their size; nothing is
// ever enlarged. The constrained side is set to the box side and the other side is
// rounded, so it deviates from the exact ratio by less than one pixel.
//
// Landscape rasters are fitted by width first. If the result is still too tall it is
// fitted by height, which keeps it inside the box for any box aspect ratio.
func FitDimensions(width, height int, box domain.BoundingBox) (int, int) {
	newWidth, newHeight := width, height

	if width >= height && width > box.MaxWidth {
		newWidth = box.MaxWidth
		newHeight = scaleSide(height, box.MaxWidth, width)
	}

	if newHeight > box.MaxHeight {
		newHeight = box.MaxHeight
		newWidth = scaleSide(width, box.MaxHeight, height)
	}

	if newWidth > box.MaxWidth {
		newWidth = box.MaxWidth
		newHeight = scaleSide(height, box.MaxWidth, width)
	}

	return newWidth, newHeight
}

// scaleSide returns round(side * num / den), at least 1.
func scaleSide(side, num, den int) int {
	return max(1, int(math.Round(float64(side)*float64(num)/float64(den))))
}

// Resize shrinks raster into box using renderer. A raster that already fits is
// returned as is.
func Resize(renderer Renderer, raster domain.Raster, box domain.BoundingBox) (domain.Raster, error) {
	if err := box.Validate(); err != nil {
		return domain.Raster{}, err
	}

	width, height := FitDimensions(raster.Width(), raster.Height(), box)
	if width == raster.Width() && height == raster.Height() {
		return raster, nil
	}

	resized, err := renderer.Draw(raster, ScaleTo(width, height))
	if err != nil {
		return domain.Raster{}, fmt.Errorf("draw %dx%d: %w", width, height, err)
	}

	return resized, nil
}
