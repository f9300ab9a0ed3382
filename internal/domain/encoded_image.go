package domain

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/mkrupp/imagepipe/internal/util/encoding"
)

// MIMETypeJPEG is the MIME type of every image produced by the pipeline.
const MIMETypeJPEG = "image/jpeg"

// EncodedImage is a compressed, byte-serialized image. It is the terminal artifact
// of the pipeline: what gets uploaded, previewed or stored by a collaborator.
type EncodedImage struct {
	data     []byte
	mimeType string
}

// NewEncodedImage creates an EncodedImage from encoded bytes.
func NewEncodedImage(data []byte, mimeType string) EncodedImage {
	return EncodedImage{
		data:     data,
		mimeType: mimeType,
	}
}

// Bytes returns the encoded content.
func (img EncodedImage) Bytes() []byte {
	return img.data
}

// Size returns the byte length of the encoded content.
func (img EncodedImage) Size() int64 {
	return int64(len(img.data))
}

// MIMEType returns the MIME type of the encoded content.
func (img EncodedImage) MIMEType() string {
	return img.mimeType
}

// Hash returns the lowercase Crockford base32 sha256 digest of the content.
func (img EncodedImage) Hash() string {
	sum := sha256.Sum256(img.data)

	return encoding.EncodeCrockfordB32LC(sum[:])
}

// Read returns a reader over the encoded content.
func (img EncodedImage) Read() io.Reader {
	return bytes.NewReader(img.data)
}

// WriteTo writes the encoded content to writer.
func (img EncodedImage) WriteTo(writer io.Writer) (int64, error) {
	n, err := writer.Write(img.data)
	if err != nil {
		return int64(n), fmt.Errorf("write: %w", err)
	}

	return int64(n), nil
}
