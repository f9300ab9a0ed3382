package imagesvc

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mkrupp/imagepipe/internal/domain"
)

// Validator gates files before any transform runs. It only looks at the size and
// the declared type; it never decodes.
type Validator struct {
	catalog Catalog
}

// NewValidator creates a Validator whose messages are in the given locale.
func NewValidator(locale string) (Validator, error) {
	catalog, err := catalogFor(locale)
	if err != nil {
		return Validator{}, err
	}

	return Validator{catalog: catalog}, nil
}

// Validate checks file against the image path constraints with English messages.
func Validate(file domain.SourceFile, maxSizeMB int, allowedTypes []string) error {
	return Validator{catalog: catalogs[DefaultLocale]}.Validate(file, maxSizeMB, allowedTypes)
}

// Validate rejects files larger than maxSizeMB, then files whose declared MIME type is
// not in allowedTypes. Type comparison ignores case and MIME parameters.
func (v Validator) Validate(file domain.SourceFile, maxSizeMB int, allowedTypes []string) error {
	if err := v.checkSize(file, maxSizeMB); err != nil {
		return err
	}

	mediaType := file.MediaType()

	allowed := slices.ContainsFunc(allowedTypes, func(allowedType string) bool {
		return strings.EqualFold(allowedType, mediaType)
	})
	if !allowed {
		return &domain.ValidationError{
			Reason:  domain.UnsupportedType,
			Message: v.catalog.unsupportedType(),
			Detail:  fmt.Sprintf("%q", file.MIMEType),
		}
	}

	return nil
}

// ValidateAttachment checks file against the generic attachment constraints: the size
// limit, then either an allowed filename extension or an image/video MIME type.
func (v Validator) ValidateAttachment(file domain.SourceFile, maxSizeMB int) error {
	if err := v.checkSize(file, maxSizeMB); err != nil {
		return err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if slices.Contains(AttachmentExtensions, ext) {
		return nil
	}

	mediaType := file.MediaType()
	for _, prefix := range attachmentMIMEPrefixes {
		if strings.HasPrefix(mediaType, prefix) {
			return nil
		}
	}

	return &domain.ValidationError{
		Reason:  domain.UnsupportedType,
		Message: v.catalog.unsupportedType(),
		Detail:  fmt.Sprintf("%q (%q)", file.Filename, file.MIMEType),
	}
}

func (v Validator) checkSize(file domain.SourceFile, maxSizeMB int) error {
	if file.Size() > int64(maxSizeMB)*bytesPerMB {
		return &domain.ValidationError{
			Reason:  domain.TooLarge,
			Message: v.catalog.tooLarge(maxSizeMB),
			Detail:  fmt.Sprintf("%d bytes exceeds %d MB", file.Size(), maxSizeMB),
		}
	}

	return nil
}
