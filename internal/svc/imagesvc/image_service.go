package imagesvc

import (
	"context"

	"github.com/mkrupp/imagepipe/internal/domain"
)

// ImageService prepares user-selected files for upload.
type ImageService interface {
	// Validate checks file against the image upload constraints.
	Validate(file domain.SourceFile) error

	// ValidateAttachment checks file against the generic attachment constraints.
	ValidateAttachment(file domain.SourceFile) error

	// Probe returns the upright pixel dimensions of file without decoding it.
	Probe(ctx context.Context, file domain.SourceFile) (width, height int, err error)

	// NormalizeForUpload validates, decodes, resizes and recompresses file into a
	// bounded-size JPEG.
	NormalizeForUpload(ctx context.Context, file domain.SourceFile) (domain.EncodedImage, error)

	// Normalize is NormalizeForUpload with a report of the passes taken.
	Normalize(ctx context.Context, file domain.SourceFile) (NormalizeResult, error)

	// NormalizeWithPreview normalizes file and builds its preview concurrently.
	// A failing preview is reported in the result but does not fail the call.
	NormalizeWithPreview(ctx context.Context, file domain.SourceFile) (UploadWithPreview, error)

	// PrepareUpload normalizes image files and passes validated attachments through.
	PrepareUpload(ctx context.Context, file domain.SourceFile) (domain.Upload, error)

	// RotateFile decodes file, rotates it clockwise by degrees and encodes it as JPEG.
	RotateFile(ctx context.Context, file domain.SourceFile, degrees float64) (domain.EncodedImage, error)

	// Preview returns the unmodified file as an embeddable preview.
	Preview(ctx context.Context, file domain.SourceFile) (domain.Preview, error)

	// PreviewRotated returns a lossless preview of file rotated clockwise by degrees.
	PreviewRotated(ctx context.Context, file domain.SourceFile, degrees float64) (domain.Preview, error)

	// BatchNormalize runs NormalizeForUpload for every file on a bounded worker pool.
	// Results are returned in input order.
	BatchNormalize(ctx context.Context, files []domain.SourceFile) []BatchResult
}

// NormalizeResult describes the output of a normalization.
type NormalizeResult struct {
	Image        domain.EncodedImage
	Passes       int
	Box          domain.BoundingBox
	Quality      float64
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
}

// UploadWithPreview is the output of NormalizeWithPreview.
type UploadWithPreview struct {
	Image      domain.EncodedImage
	Preview    domain.Preview
	PreviewErr error
}

// BatchResult is the outcome of one batch item.
type BatchResult struct {
	File    domain.SourceFile
	Image   domain.EncodedImage
	TraceID string
	Err     error
}
