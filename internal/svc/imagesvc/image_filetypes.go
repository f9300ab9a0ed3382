package imagesvc

import (
	"bytes"
	"slices"
	"strings"

	"github.com/mkrupp/imagepipe/internal/domain"
)

const (
	MIMETypeJPEG = domain.MIMETypeJPEG
	MIMETypeJPG  = "image/jpg"
	MIMETypePNG  = "image/png"
	MIMETypeWebP = "image/webp"
)

//nolint:gochecknoglobals
var (
	// AllowedImageTypes are the MIME types accepted on the image upload path.
	AllowedImageTypes = []string{MIMETypeJPEG, MIMETypeJPG, MIMETypePNG, MIMETypeWebP}

	// AttachmentExtensions are the filename extensions accepted on the attachment path.
	AttachmentExtensions = []string{"pdf", "doc", "docx", "txt", "zip", "rar"}

	attachmentMIMEPrefixes = []string{"image/", "video/"}

	imageHeaders = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8\xFF"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
	}
)

// webp files are RIFF containers: "RIFF" <size:4> "WEBP".
const (
	riffHeader = "RIFF"
	webpFourCC = "WEBP"
)

// IsImageType reports whether mimeType belongs to the image upload path.
func IsImageType(mimeType string) bool {
	return slices.Contains(AllowedImageTypes, strings.ToLower(mimeType))
}

// sniffImageType returns the MIME type announced by the magic header of data.
func sniffImageType(data []byte) (string, bool) {
	for mimeType, headers := range imageHeaders {
		for _, header := range headers {
			if bytes.HasPrefix(data, []byte(header)) {
				return mimeType, true
			}
		}
	}

	if len(data) >= 12 && string(data[0:4]) == riffHeader && string(data[8:12]) == webpFourCC {
		return MIMETypeWebP, true
	}

	return "", false
}
