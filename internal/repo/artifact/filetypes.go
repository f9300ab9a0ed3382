package artifact

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIMETypeOctetStream is used for files whose type cannot be derived.
const MIMETypeOctetStream = "application/octet-stream"

//nolint:gochecknoglobals
var (
	extTypes = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".jpe":  "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
		".pdf":  "application/pdf",
		".txt":  "text/plain",
		".zip":  "application/zip",
	}

	typeExts = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
)

// MIMETypeByFilename derives a MIME type from the filename extension. Common types
// come from a fixed table so results do not depend on the host's mime database.
func MIMETypeByFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if mimeType, ok := extTypes[ext]; ok {
		return mimeType
	}

	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}

	return MIMETypeOctetStream
}

func extByMIMEType(mimeType string) string {
	if ext, ok := typeExts[mimeType]; ok {
		return ext
	}

	return ".bin"
}
