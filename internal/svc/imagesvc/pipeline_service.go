package imagesvc

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/mkrupp/imagepipe/internal/domain"
	context_ "github.com/mkrupp/imagepipe/internal/infra/context"
	"github.com/mkrupp/imagepipe/internal/infra/logging"
)

// ErrOutputTooLarge is returned when even the fallback pass exceeds the output ceiling.
var ErrOutputTooLarge = errors.New("normalized image exceeds upload ceiling")

// PipelineImageService implements ImageService by composing the pipeline stages.
// It holds no per-invocation state; concurrent calls are independent.
type PipelineImageService struct {
	cfg        ImageConfig
	renderer   Renderer
	validator  Validator
	background color.Color
	pool       pond.ResultPool[BatchResult]
	log        logging.Logger
}

var _ ImageService = (*PipelineImageService)(nil)

// NewPipelineImageService creates a PipelineImageService with the given configuration.
// Call Close to release the batch worker pool.
func NewPipelineImageService(cfg ImageConfig) (*PipelineImageService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(cfg.Interpolator)
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	validator, err := NewValidator(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("new validator: %w", err)
	}

	background, err := parseBackground(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("parse background: %w", err)
	}

	return &PipelineImageService{
		cfg:        cfg,
		renderer:   renderer,
		validator:  validator,
		background: background,
		pool:       pond.NewResultPool[BatchResult](cfg.Workers),
		log:        logging.GetLogger("svc.imagesvc.pipeline_service"),
	}, nil
}

// Close waits for running batch items and stops the worker pool.
func (svc *PipelineImageService) Close() {
	svc.pool.StopAndWait()
}

// Validate implements ImageService.Validate.
func (svc *PipelineImageService) Validate(file domain.SourceFile) error {
	return svc.validator.Validate(file, svc.cfg.MaxUploadSizeMB, AllowedImageTypes)
}

// ValidateAttachment implements ImageService.ValidateAttachment.
func (svc *PipelineImageService) ValidateAttachment(file domain.SourceFile) error {
	return svc.validator.ValidateAttachment(file, svc.cfg.MaxAttachmentSizeMB)
}

// Probe implements ImageService.Probe.
func (svc *PipelineImageService) Probe(
	ctx context.Context,
	file domain.SourceFile,
) (width, height int, err error) {
	ctx = svc.traced(ctx)
	log := svc.fileLogger(file)

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "image probe failed", "error", err)
		} else {
			log.DebugContext(ctx, "image probed", logging.Group("image", "width", width, "height", height))
		}
	}()

	return ProbeDimensions(file)
}

// NormalizeForUpload implements ImageService.NormalizeForUpload.
func (svc *PipelineImageService) NormalizeForUpload(
	ctx context.Context,
	file domain.SourceFile,
) (domain.EncodedImage, error) {
	result, err := svc.Normalize(ctx, file)
	if err != nil {
		return domain.EncodedImage{}, err
	}

	return result.Image, nil
}

// Normalize implements ImageService.Normalize. Validation failures are returned as
// *domain.ValidationError, everything after validation as *domain.ProcessingError.
func (svc *PipelineImageService) Normalize(
	ctx context.Context,
	file domain.SourceFile,
) (result NormalizeResult, err error) {
	ctx = svc.traced(ctx)
	log := svc.fileLogger(file)

	defer func() {
		var validationErr *domain.ValidationError

		switch {
		case errors.As(err, &validationErr):
			log.InfoContext(ctx, "image rejected", "reason", validationErr.Reason, "error", err)
		case err != nil:
			log.ErrorContext(ctx, "image normalize failed", "error", err)
		default:
			log.DebugContext(ctx, "image normalized", logging.Group("result",
				"passes", result.Passes,
				"box", result.Box.String(),
				"quality", result.Quality,
				"source", fmt.Sprintf("%dx%d", result.SourceWidth, result.SourceHeight),
				"output", fmt.Sprintf("%dx%d", result.Width, result.Height),
				"size", result.Image.Size(),
				"hash", result.Image.Hash(),
			))
		}
	}()

	if err := svc.Validate(file); err != nil {
		return NormalizeResult{}, err
	}

	result, err = svc.normalize(file)
	if err != nil {
		return NormalizeResult{}, &domain.ProcessingError{Cause: err}
	}

	return result, nil
}

// normalize runs the primary pass and, if its output is over the target size, the
// fallback pass once. Both passes start from the decoded source.
func (svc *PipelineImageService) normalize(file domain.SourceFile) (NormalizeResult, error) {
	raster, err := DecodeLimited(file, svc.cfg.MaxDecodedPixels)
	if err != nil {
		return NormalizeResult{}, err
	}

	result := NormalizeResult{
		SourceWidth:  raster.Width(),
		SourceHeight: raster.Height(),
	}

	primary := svc.cfg.PrimaryPass()

	if err := svc.runPass(raster, primary, &result); err != nil {
		return NormalizeResult{}, fmt.Errorf("primary pass: %w", err)
	}

	if primary.Budget.Fits(result.Image.Size()) {
		return result, nil
	}

	fallback := svc.cfg.FallbackPass()

	if err := svc.runPass(raster, fallback, &result); err != nil {
		return NormalizeResult{}, fmt.Errorf("fallback pass: %w", err)
	}

	if !fallback.Budget.Fits(result.Image.Size()) {
		return NormalizeResult{}, fmt.Errorf("%w: %d bytes", ErrOutputTooLarge, result.Image.Size())
	}

	return result, nil
}

func (svc *PipelineImageService) runPass(raster domain.Raster, pass Pass, result *NormalizeResult) error {
	resized, err := Resize(svc.renderer, raster, pass.Box)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}

	encoded, err := CompressOnto(resized, pass.Budget.Quality, svc.background)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	result.Image = encoded
	result.Passes++
	result.Box = pass.Box
	result.Quality = pass.Budget.Quality
	result.Width = resized.Width()
	result.Height = resized.Height()

	return nil
}

// NormalizeWithPreview implements ImageService.NormalizeWithPreview.
func (svc *PipelineImageService) NormalizeWithPreview(
	ctx context.Context,
	file domain.SourceFile,
) (UploadWithPreview, error) {
	ctx = svc.traced(ctx)

	type previewOutcome struct {
		preview domain.Preview
		err     error
	}

	previewCh := make(chan previewOutcome, 1)

	go func() {
		preview, err := svc.Preview(ctx, file)
		previewCh <- previewOutcome{preview: preview, err: err}
	}()

	image, err := svc.NormalizeForUpload(ctx, file)
	outcome := <-previewCh

	result := UploadWithPreview{
		Image:      image,
		Preview:    outcome.preview,
		PreviewErr: outcome.err,
	}

	return result, err
}

// PrepareUpload implements ImageService.PrepareUpload. Normalized images are renamed
// to a .jpg extension.
func (svc *PipelineImageService) PrepareUpload(
	ctx context.Context,
	file domain.SourceFile,
) (upload domain.Upload, err error) {
	ctx = svc.traced(ctx)

	if IsImageType(file.MediaType()) {
		image, err := svc.NormalizeForUpload(ctx, file)
		if err != nil {
			return domain.Upload{}, err
		}

		return domain.UploadFromImage(jpegFilename(file.Filename), image), nil
	}

	log := svc.fileLogger(file)

	defer func() {
		if err != nil {
			log.InfoContext(ctx, "attachment rejected", "error", err)
		} else {
			log.DebugContext(ctx, "attachment passed through")
		}
	}()

	if err := svc.ValidateAttachment(file); err != nil {
		return domain.Upload{}, err
	}

	return domain.UploadFromFile(file), nil
}

func jpegFilename(filename string) string {
	if filename == "" {
		return ""
	}

	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

// RotateFile implements ImageService.RotateFile.
func (svc *PipelineImageService) RotateFile(
	ctx context.Context,
	file domain.SourceFile,
	degrees float64,
) (image domain.EncodedImage, err error) {
	ctx = svc.traced(ctx)
	log := svc.fileLogger(file).With("degrees", degrees)

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "image rotate failed", "error", err)
		} else {
			log.DebugContext(ctx, "image rotated", logging.Group("image", "size", image.Size(), "hash", image.Hash()))
		}
	}()

	raster, err := DecodeLimited(file, svc.cfg.MaxDecodedPixels)
	if err != nil {
		return domain.EncodedImage{}, &domain.ProcessingError{Cause: err}
	}

	rotated, err := Rotate(svc.renderer, raster, degrees)
	if err != nil {
		return domain.EncodedImage{}, &domain.ProcessingError{Cause: fmt.Errorf("rotate: %w", err)}
	}

	image, err = CompressOnto(rotated, svc.cfg.RotateQuality, svc.background)
	if err != nil {
		return domain.EncodedImage{}, &domain.ProcessingError{Cause: fmt.Errorf("compress: %w", err)}
	}

	return image, nil
}

// Preview implements ImageService.Preview.
func (svc *PipelineImageService) Preview(
	ctx context.Context,
	file domain.SourceFile,
) (preview domain.Preview, err error) {
	ctx = svc.traced(ctx)
	log := svc.fileLogger(file)

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "image preview failed", "error", err)
		} else {
			log.DebugContext(ctx, "image preview built")
		}
	}()

	return ToPreview(file)
}

// PreviewRotated implements ImageService.PreviewRotated.
func (svc *PipelineImageService) PreviewRotated(
	ctx context.Context,
	file domain.SourceFile,
	degrees float64,
) (preview domain.Preview, err error) {
	ctx = svc.traced(ctx)
	log := svc.fileLogger(file).With("degrees", degrees)

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "rotated preview failed", "error", err)
		} else {
			log.DebugContext(ctx, "rotated preview built", "size", len(preview.Data))
		}
	}()

	raster, err := DecodeLimited(file, svc.cfg.MaxDecodedPixels)
	if err != nil {
		return domain.Preview{}, &domain.PreviewError{Err: err}
	}

	rotated, err := Rotate(svc.renderer, raster, degrees)
	if err != nil {
		return domain.Preview{}, &domain.PreviewError{Err: fmt.Errorf("rotate: %w", err)}
	}

	return RasterPreview(rotated)
}

func (svc *PipelineImageService) fileLogger(file domain.SourceFile) logging.Logger {
	return svc.log.With(logging.Group("file",
		"name", file.Filename,
		"type", file.MIMEType,
		"size", file.Size(),
	))
}

// traced tags ctx with a trace ID unless it already carries one.
func (svc *PipelineImageService) traced(ctx context.Context) context.Context {
	traced, err := context_.EnsureTraceID(ctx)
	if err != nil {
		svc.log.WarnContext(ctx, "trace id unavailable", "error", err)

		return ctx
	}

	return traced
}
