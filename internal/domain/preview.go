package domain

import "encoding/base64"

// Preview is a self-contained, text-embeddable encoding of an image.
type Preview struct {
	MIMEType string
	Data     []byte
}

// DataURI returns the preview as a base64 data URI.
func (p Preview) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}
