package imagesvc

//nolint:gochecknoglobals
var (
	ReadJPEGOrientation = readJPEGOrientation
	JPEGQuality         = jpegQuality
	SniffImageType      = sniffImageType
)
