package imagesvc

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/mkrupp/imagepipe/internal/domain"
)

const bytesPerMB = 1024 * 1024

// ErrInvalidConfig is returned by NewPipelineImageService for an unusable ImageConfig.
var ErrInvalidConfig = errors.New("invalid image config")

// ImageConfig holds configuration parameters for the image service.
type ImageConfig struct {
	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear",
	// "lanczos", "mitchellnetravali", "box"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// Locale selects the language of user-facing validation messages ("en", "de").
	Locale string `env:"LOCALE" default:"en"`

	// MaxUploadSizeMB is the hard ceiling for images entering the upload path.
	MaxUploadSizeMB int `env:"MAX_UPLOAD_SIZE_MB" default:"10"`

	// MaxAttachmentSizeMB is the ceiling for non-image attachments.
	MaxAttachmentSizeMB int `env:"MAX_ATTACHMENT_SIZE_MB" default:"10"`

	// MaxOutputBytes is the hard ceiling for normalized images. A fallback pass over it fails.
	MaxOutputBytes int64 `env:"MAX_OUTPUT_BYTES" default:"10485760"`

	// MaxDecodedPixels rejects images whose header announces more pixels before decoding.
	MaxDecodedPixels int64 `env:"MAX_DECODED_PIXELS" default:"50000000"`

	// TargetMaxBytes triggers the fallback pass when the primary pass output exceeds it.
	TargetMaxBytes int64 `env:"TARGET_MAX_BYTES" default:"5242880"`

	PrimaryWidth   int     `env:"PRIMARY_WIDTH" default:"800"`
	PrimaryHeight  int     `env:"PRIMARY_HEIGHT" default:"600"`
	PrimaryQuality float64 `env:"PRIMARY_QUALITY" default:"0.8"`

	FallbackWidth   int     `env:"FALLBACK_WIDTH" default:"600"`
	FallbackHeight  int     `env:"FALLBACK_HEIGHT" default:"450"`
	FallbackQuality float64 `env:"FALLBACK_QUALITY" default:"0.6"`

	// RotateQuality is the encoder quality of the edit path.
	RotateQuality float64 `env:"ROTATE_QUALITY" default:"0.9"`

	// Background is the hex RGB color transparent pixels are flattened onto.
	Background string `env:"BACKGROUND" default:"ffffff"`

	// Workers bounds the number of concurrent batch invocations.
	Workers int `env:"WORKERS" default:"4"`
}

// DefaultImageConfig returns the configuration the env defaults describe.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		Interpolator:        "catmullrom",
		Locale:              "en",
		MaxUploadSizeMB:     10,
		MaxAttachmentSizeMB: 10,
		MaxOutputBytes:      10 * bytesPerMB,
		MaxDecodedPixels:    DefaultMaxDecodedPixels,
		TargetMaxBytes:      5 * bytesPerMB,
		PrimaryWidth:        800,
		PrimaryHeight:       600,
		PrimaryQuality:      0.8,
		FallbackWidth:       600,
		FallbackHeight:      450,
		FallbackQuality:     0.6,
		RotateQuality:       0.9,
		Background:          "ffffff",
		Workers:             4,
	}
}

// Pass is one resize-and-encode step of the normalization policy.
type Pass struct {
	Box    domain.BoundingBox
	Budget domain.QualityBudget
}

// PrimaryPass returns the first normalization pass.
func (cfg ImageConfig) PrimaryPass() Pass {
	return Pass{
		Box:    domain.Box(cfg.PrimaryWidth, cfg.PrimaryHeight),
		Budget: domain.QualityBudget{Quality: cfg.PrimaryQuality, MaxBytes: cfg.TargetMaxBytes},
	}
}

// FallbackPass returns the pass run when the primary output is over budget. Its budget
// is the output ceiling.
func (cfg ImageConfig) FallbackPass() Pass {
	return Pass{
		Box:    domain.Box(cfg.FallbackWidth, cfg.FallbackHeight),
		Budget: domain.QualityBudget{Quality: cfg.FallbackQuality, MaxBytes: cfg.MaxOutputBytes},
	}
}

// Validate checks that every policy value is usable.
func (cfg ImageConfig) Validate() error {
	if _, err := getInterpolatorByName(cfg.Interpolator); err != nil {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, err, cfg.Interpolator)
	}

	if _, err := catalogFor(cfg.Locale); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.MaxUploadSizeMB <= 0 || cfg.MaxAttachmentSizeMB <= 0 {
		return fmt.Errorf("%w: size limits must be positive", ErrInvalidConfig)
	}

	if cfg.MaxDecodedPixels <= 0 {
		return fmt.Errorf("%w: max decoded pixels must be positive", ErrInvalidConfig)
	}

	for _, pass := range []Pass{cfg.PrimaryPass(), cfg.FallbackPass()} {
		if err := pass.Box.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		if err := pass.Budget.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if cfg.RotateQuality <= 0 || cfg.RotateQuality > 1 {
		return fmt.Errorf("%w: rotate quality %v not in (0,1]", ErrInvalidConfig, cfg.RotateQuality)
	}

	if _, err := parseBackground(cfg.Background); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}

	return nil
}

// parseBackground parses a 6 digit hex RGB color, with or without a leading '#'.
func parseBackground(hex string) (color.RGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("background %q: want 6 hex digits", hex)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("background %q: %w", hex, err)
	}

	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xff,
	}, nil
}
