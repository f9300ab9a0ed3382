package imagesvc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/imagepipe/internal/domain"
)

// ErrUnknownLocale is returned for a locale without a message catalog.
var ErrUnknownLocale = errors.New("unknown locale")

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

// Catalog maps a validation reason to a user-facing message format.
// TooLarge formats receive the limit in MB.
type Catalog map[domain.ValidationReason]string

//nolint:gochecknoglobals
var catalogs = map[string]Catalog{
	"en": {
		domain.TooLarge:        "The file is too large. Files may be at most %d MB.",
		domain.UnsupportedType: "This file type is not supported.",
	},
	"de": {
		domain.TooLarge:        "Die Datei ist zu groß. Dateien dürfen höchstens %d MB groß sein.",
		domain.UnsupportedType: "Dieser Dateityp wird nicht unterstützt.",
	},
}

func catalogFor(locale string) (Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}

	// "de-AT" and "de_AT" fall back to "de"
	lang, _, _ := strings.Cut(strings.ReplaceAll(strings.ToLower(locale), "_", "-"), "-")

	catalog, ok := catalogs[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}

	return catalog, nil
}

func (c Catalog) tooLarge(maxSizeMB int) string {
	return fmt.Sprintf(c[domain.TooLarge], maxSizeMB)
}

func (c Catalog) unsupportedType() string {
	return c[domain.UnsupportedType]
}
