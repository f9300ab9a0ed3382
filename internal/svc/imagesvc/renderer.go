package imagesvc

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mkrupp/imagepipe/internal/domain"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	// Supported values: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear".
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}

	// resampleMap holds the imaging filters usable for scaling. Affine draws with these
	// fall back to catmullrom.
	resampleMap = map[string]imaging.ResampleFilter{
		"lanczos":           imaging.Lanczos,
		"mitchellnetravali": imaging.MitchellNetravali,
		"box":               imaging.Box,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	name = strings.ToLower(name)

	if interpol, ok := interpolMap[name]; ok {
		return interpol, nil
	}

	if _, ok := resampleMap[name]; ok {
		return draw.CatmullRom, nil
	}

	return nil, ErrUnknownInterpolator
}

// Transform describes a drawing onto a Width x Height canvas. Matrix maps source
// pixel coordinates to canvas coordinates; a nil Matrix stretches the source to
// fill the canvas.
type Transform struct {
	Width  int
	Height int
	Matrix *f64.Aff3
}

// ScaleTo returns a stretch-to-fit Transform.
func ScaleTo(width, height int) Transform {
	return Transform{Width: width, Height: height}
}

// Renderer draws rasters onto new canvases.
type Renderer interface {
	Draw(src domain.Raster, t Transform) (domain.Raster, error)
}

// InterpolatingRenderer renders with one of the golang.org/x/image/draw kernels, or
// scales with an imaging resample filter. Canvas pixels the source does not cover
// stay transparent.
type InterpolatingRenderer struct {
	interpol draw.Interpolator
	resample *imaging.ResampleFilter
}

var _ Renderer = (*InterpolatingRenderer)(nil)

// NewRenderer creates an InterpolatingRenderer for the named kernel.
func NewRenderer(interpolator string) (*InterpolatingRenderer, error) {
	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, interpolator)
	}

	renderer := &InterpolatingRenderer{interpol: interpol}

	if filter, ok := resampleMap[strings.ToLower(interpolator)]; ok {
		renderer.resample = &filter
	}

	return renderer, nil
}

// Draw implements Renderer.
func (r *InterpolatingRenderer) Draw(src domain.Raster, t Transform) (domain.Raster, error) {
	if t.Width <= 0 || t.Height <= 0 {
		return domain.Raster{}, fmt.Errorf("%w: canvas %dx%d", domain.ErrEmptyRaster, t.Width, t.Height)
	}

	if src.IsZero() {
		return domain.Raster{}, domain.ErrEmptyRaster
	}

	if t.Matrix == nil && r.resample != nil {
		return domain.NewRaster(imaging.Resize(src.Image(), t.Width, t.Height, *r.resample))
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))

	if t.Matrix == nil {
		r.interpol.Scale(canvas, canvas.Bounds(), src.Image(), src.Bounds(), draw.Src, nil)
	} else {
		r.interpol.Transform(canvas, *t.Matrix, src.Image(), src.Bounds(), draw.Over, nil)
	}

	return domain.NewRaster(canvas)
}
