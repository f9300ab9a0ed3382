package domain

// Upload is what PrepareUpload hands to the uploading collaborator: either a
// normalized JPEG or an attachment passed through byte for byte.
type Upload struct {
	Filename   string
	MIMEType   string
	Data       []byte
	Normalized bool
}

// UploadFromImage wraps a pipeline output for filename.
func UploadFromImage(filename string, img EncodedImage) Upload {
	return Upload{
		Filename:   filename,
		MIMEType:   img.MIMEType(),
		Data:       img.Bytes(),
		Normalized: true,
	}
}

// UploadFromFile passes file through unmodified.
func UploadFromFile(file SourceFile) Upload {
	return Upload{
		Filename: file.Filename,
		MIMEType: file.MIMEType,
		Data:     file.Data,
	}
}

// Size returns the byte length of the upload.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}
