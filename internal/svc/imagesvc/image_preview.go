package imagesvc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/mkrupp/imagepipe/internal/domain"
)

var (
	// ErrEmptyFile is returned when a preview is requested for a file without content.
	ErrEmptyFile = errors.New("empty file")

	// ErrMissingMIMEType is returned when a preview is requested for a file without a
	// declared MIME type.
	ErrMissingMIMEType = errors.New("missing MIME type")
)

// ToPreview embeds the original bytes of file, unmodified, in a Preview tagged with the
// declared MIME type.
func ToPreview(file domain.SourceFile) (domain.Preview, error) {
	if len(file.Data) == 0 {
		return domain.Preview{}, &domain.PreviewError{Err: ErrEmptyFile}
	}

	mimeType := file.MediaType()
	if mimeType == "" {
		return domain.Preview{}, &domain.PreviewError{Err: ErrMissingMIMEType}
	}

	return domain.Preview{MIMEType: mimeType, Data: file.Data}, nil
}

// RasterPreview encodes raster losslessly as PNG.
func RasterPreview(raster domain.Raster) (domain.Preview, error) {
	if raster.IsZero() {
		return domain.Preview{}, &domain.PreviewError{Err: domain.ErrEmptyRaster}
	}

	var buffer bytes.Buffer

	if err := imaging.Encode(&buffer, raster.Image(), imaging.PNG); err != nil {
		return domain.Preview{}, &domain.PreviewError{Err: fmt.Errorf("encode png: %w", err)}
	}

	return domain.Preview{MIMEType: MIMETypePNG, Data: buffer.Bytes()}, nil
}
