package domain

import (
	"bytes"
	"io"
	"mime"
	"strings"
)

// SourceFile is a user-selected file as handed to the pipeline: the raw bytes together with
// the MIME type and filename declared by the selecting collaborator. It is never modified.
type SourceFile struct {
	Filename string
	MIMEType string
	Data     []byte
}

// NewSourceFile creates a SourceFile from its parts.
func NewSourceFile(filename, mimeType string, data []byte) SourceFile {
	return SourceFile{
		Filename: filename,
		MIMEType: mimeType,
		Data:     data,
	}
}

// Size returns the byte length of the file content.
func (f SourceFile) Size() int64 {
	return int64(len(f.Data))
}

// Read returns a reader over the file content.
func (f SourceFile) Read() io.Reader {
	return bytes.NewReader(f.Data)
}

// MediaType returns the declared MIME type lowercased and without parameters,
// e.g. "Image/JPEG; q=1" becomes "image/jpeg".
func (f SourceFile) MediaType() string {
	mediaType, _, err := mime.ParseMediaType(f.MIMEType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(f.MIMEType))
	}

	return mediaType
}
