package imagesvc

import (
	"errors"
	"fmt"
	"image"

	// Register codecs with image.Decode and image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/mkrupp/imagepipe/internal/domain"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnknownCodec is returned for data without a recognized image header.
	ErrUnknownCodec = errors.New("unknown image codec")

	// ErrTooManyPixels is returned when the header announces more pixels than may be decoded.
	ErrTooManyPixels = errors.New("image exceeds maximum pixel count")
)

// DefaultMaxDecodedPixels bounds the pixel count Decode accepts.
const DefaultMaxDecodedPixels int64 = 50_000_000

// Decode turns the bytes of file into a Raster. EXIF orientation is applied, so the
// raster is upright. The declared MIME type is not consulted; the codec is chosen from
// the magic header. Images above DefaultMaxDecodedPixels are rejected.
func Decode(file domain.SourceFile) (domain.Raster, error) {
	return DecodeLimited(file, DefaultMaxDecodedPixels)
}

// DecodeLimited is Decode with a custom pixel ceiling. The header is probed first, so an
// image over maxPixels is rejected before its pixel data is allocated.
func DecodeLimited(file domain.SourceFile, maxPixels int64) (domain.Raster, error) {
	width, height, err := ProbeDimensions(file)
	if err != nil {
		return domain.Raster{}, err
	}

	if pixels := int64(width) * int64(height); pixels > maxPixels {
		return domain.Raster{}, &domain.DecodeError{
			Err: fmt.Errorf("%w: %dx%d is over %d", ErrTooManyPixels, width, height, maxPixels),
		}
	}

	codec, _ := sniffImageType(file.Data)

	img, err := imaging.Decode(file.Read())
	if err != nil {
		return domain.Raster{}, &domain.DecodeError{Err: fmt.Errorf("decode %s: %w", codec, err)}
	}

	if codec == MIMETypeJPEG {
		if orientation, ok := readJPEGOrientation(file.Data); ok {
			img = orient(img, orientation)
		}
	}

	raster, err := domain.NewRaster(img)
	if err != nil {
		return domain.Raster{}, &domain.DecodeError{Err: err}
	}

	return raster, nil
}

// ProbeDimensions reads the pixel dimensions of file from its header without decoding
// the pixel data. Dimensions are reported as Decode would produce them, i.e. after EXIF
// orientation.
func ProbeDimensions(file domain.SourceFile) (width, height int, err error) {
	codec, ok := sniffImageType(file.Data)
	if !ok {
		return 0, 0, &domain.DecodeError{Err: ErrUnknownCodec}
	}

	cfg, _, err := image.DecodeConfig(file.Read())
	if err != nil {
		return 0, 0, &domain.DecodeError{Err: fmt.Errorf("decode %s config: %w", codec, err)}
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, &domain.DecodeError{Err: domain.ErrEmptyRaster}
	}

	width, height = cfg.Width, cfg.Height

	if codec == MIMETypeJPEG {
		if orientation, ok := readJPEGOrientation(file.Data); ok && swapsAxes(orientation) {
			width, height = height, width
		}
	}

	return width, height, nil
}
