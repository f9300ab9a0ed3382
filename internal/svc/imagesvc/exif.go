package imagesvc

import (
	"encoding/binary"
	"image"

	"github.com/disintegration/imaging"
)

const (
	jpegMarkerSOS  = 0xDA
	jpegMarkerEOI  = 0xD9
	jpegMarkerAPP1 = 0xE1

	exifTagOrientation = 0x0112
	exifTypeShort      = 3

	exifHeader = "Exif\x00\x00"
)

// readJPEGOrientation returns the EXIF orientation (1-8) stored in a JPEG APP1
// segment. ok is false when data carries no usable orientation tag.
func readJPEGOrientation(data []byte) (orientation int, ok bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, false
	}

	pos := 2
	for pos+4 < len(data) {
		if data[pos] != 0xFF {
			return 0, false
		}

		// markers may be preceded by any number of 0xFF fill bytes
		for pos+1 < len(data) && data[pos+1] == 0xFF {
			pos++
		}

		if pos+4 > len(data) {
			break
		}

		marker := data[pos+1]
		pos += 2

		if marker == jpegMarkerEOI || marker == jpegMarkerSOS {
			break
		}

		segLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		pos += 2

		if segLen < 2 || pos+segLen-2 > len(data) {
			break
		}

		if marker == jpegMarkerAPP1 {
			seg := data[pos : pos+segLen-2]
			if len(seg) >= len(exifHeader) && string(seg[:len(exifHeader)]) == exifHeader {
				return parseTIFFOrientation(seg[len(exifHeader):])
			}
		}

		pos += segLen - 2
	}

	return 0, false
}

func parseTIFFOrientation(tiff []byte) (int, bool) {
	if len(tiff) < 8 {
		return 0, false
	}

	var order binary.ByteOrder

	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, false
	}

	if order.Uint16(tiff[2:4]) != 42 {
		return 0, false
	}

	ifd := int(order.Uint32(tiff[4:8]))
	if ifd <= 0 || ifd+2 > len(tiff) {
		return 0, false
	}

	count := int(order.Uint16(tiff[ifd : ifd+2]))
	entry := ifd + 2

	for range count {
		if entry+12 > len(tiff) {
			break
		}

		if order.Uint16(tiff[entry:entry+2]) == exifTagOrientation {
			if order.Uint16(tiff[entry+2:entry+4]) != exifTypeShort {
				return 0, false
			}

			value := int(order.Uint16(tiff[entry+8 : entry+10]))
			if value < 1 || value > 8 {
				return 0, false
			}

			return value, true
		}

		entry += 12
	}

	return 0, false
}

// swapsAxes reports whether an EXIF orientation turns the stored image by 90 degrees.
func swapsAxes(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}

// orient turns img upright according to its EXIF orientation.
func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
