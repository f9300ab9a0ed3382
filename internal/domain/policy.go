package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned for bounding boxes or quality budgets outside their domain.
var ErrInvalidPolicy = errors.New("invalid policy")

// BoundingBox is the maximum size a resized raster may take.
type BoundingBox struct {
	MaxWidth  int
	MaxHeight int
}

// Box is a shorthand for BoundingBox{MaxWidth: w, MaxHeight: h}.
func Box(w, h int) BoundingBox {
	return BoundingBox{MaxWidth: w, MaxHeight: h}
}

// Validate checks that both sides are positive.
func (b BoundingBox) Validate() error {
	if b.MaxWidth <= 0 || b.MaxHeight <= 0 {
		return fmt.Errorf("%w: box %dx%d", ErrInvalidPolicy, b.MaxWidth, b.MaxHeight)
	}

	return nil
}

// Contains reports whether a width x height raster fits in the box.
func (b BoundingBox) Contains(width, height int) bool {
	return width <= b.MaxWidth && height <= b.MaxHeight
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%dx%d", b.MaxWidth, b.MaxHeight)
}

// QualityBudget pairs an encoder quality factor in (0,1] with a target byte size.
type QualityBudget struct {
	Quality  float64
	MaxBytes int64
}

// Validate checks the quality factor range and that the byte target is positive.
func (q QualityBudget) Validate() error {
	if q.Quality <= 0 || q.Quality > 1 {
		return fmt.Errorf("%w: quality %v not in (0,1]", ErrInvalidPolicy, q.Quality)
	}

	if q.MaxBytes <= 0 {
		return fmt.Errorf("%w: max bytes %d", ErrInvalidPolicy, q.MaxBytes)
	}

	return nil
}

// Fits reports whether size bytes stay within the budget.
func (q QualityBudget) Fits(size int64) bool {
	return size <= q.MaxBytes
}
