package imagesvc_test

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand/v2"
	"testing"

	"github.com/mkrupp/imagepipe/internal/domain"
	"github.com/mkrupp/imagepipe/internal/svc/imagesvc"
	"github.com/stretchr/testify/require"
)

// webp1x1 is a 1x1 lossless WebP image.
const webp1x1 = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

// gradient returns an opaque width x height image with smooth color ramps.
func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		for x := range width {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, width-1)),
				G: uint8(y * 255 / max(1, height-1)),
				B: 0x80,
				A: 0xff,
			})
		}
	}

	return img
}

// noise returns an opaque image of random pixels, which compresses badly.
func noise(width, height int) *image.NRGBA {
	rng := rand.New(rand.NewPCG(1, 2))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.UintN(256))
		img.Pix[i+1] = uint8(rng.UintN(256))
		img.Pix[i+2] = uint8(rng.UintN(256))
		img.Pix[i+3] = 0xff
	}

	return img
}

// split returns an image whose left half is red and right half is blue.
func split(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		for x := range width {
			if x < width/2 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}

	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))

	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func webpData(t *testing.T) []byte {
	t.Helper()

	data, err := base64.StdEncoding.DecodeString(webp1x1)
	require.NoError(t, err)

	return data
}

// withOrientation inserts an EXIF APP1 segment carrying orientation right after the
// SOI marker of a JPEG.
func withOrientation(jpegData []byte, orientation uint16) []byte {
	tiff := []byte("MM\x00\x2A\x00\x00\x00\x08")
	tiff = binary.BigEndian.AppendUint16(tiff, 1)      // entry count
	tiff = binary.BigEndian.AppendUint16(tiff, 0x0112) // orientation tag
	tiff = binary.BigEndian.AppendUint16(tiff, 3)      // SHORT
	tiff = binary.BigEndian.AppendUint32(tiff, 1)      // value count
	tiff = binary.BigEndian.AppendUint16(tiff, orientation)
	tiff = append(tiff, 0, 0)       // value padding
	tiff = append(tiff, 0, 0, 0, 0) // next IFD

	payload := append([]byte("Exif\x00\x00"), tiff...)

	segment := []byte{0xFF, 0xE1}
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(payload)+2))
	segment = append(segment, payload...)

	out := append([]byte{}, jpegData[:2]...)
	out = append(out, segment...)

	return append(out, jpegData[2:]...)
}

// withFillBytes puts 0xFF fill bytes between the SOI marker and the next marker.
func withFillBytes(jpegData []byte) []byte {
	out := append([]byte{}, jpegData[:2]...)
	out = append(out, 0xFF, 0xFF, 0xFF)

	return append(out, jpegData[2:]...)
}

func jpegFile(t *testing.T, img image.Image) domain.SourceFile {
	t.Helper()

	return domain.NewSourceFile("photo.jpg", imagesvc.MIMETypeJPEG, encodeJPEG(t, img))
}

func pngFile(t *testing.T, img image.Image) domain.SourceFile {
	t.Helper()

	return domain.NewSourceFile("picture.png", imagesvc.MIMETypePNG, encodePNG(t, img))
}

func raster(t *testing.T, img image.Image) domain.Raster {
	t.Helper()

	r, err := domain.NewRaster(img)
	require.NoError(t, err)

	return r
}

func renderer(t *testing.T, name string) imagesvc.Renderer {
	t.Helper()

	r, err := imagesvc.NewRenderer(name)
	require.NoError(t, err)

	return r
}

// decodeJPEG decodes pipeline output for inspection.
func decodeJPEG(t *testing.T, img domain.EncodedImage) image.Image {
	t.Helper()

	require.Equal(t, imagesvc.MIMETypeJPEG, img.MIMEType())

	decoded, err := jpeg.Decode(img.Read())
	require.NoError(t, err)

	return decoded
}

// near reports whether two colors differ by at most tolerance per 8-bit channel.
func near(c1, c2 color.Color, tolerance uint32) bool {
	r1, g1, b1, a1 := c1.RGBA()
	r2, g2, b2, a2 := c2.RGBA()

	diff := func(x, y uint32) uint32 {
		if x > y {
			return (x - y) >> 8
		}

		return (y - x) >> 8
	}

	return diff(r1, r2) <= tolerance && diff(g1, g2) <= tolerance &&
		diff(b1, b2) <= tolerance && diff(a1, a2) <= tolerance
}

var blackColor = color.NRGBA{A: 0xff}

// splitWithHole returns split(width, height) with a fully transparent center.
func splitWithHole(width, height int) *image.NRGBA {
	img := split(width, height)

	for y := height / 4; y < height*3/4; y++ {
		for x := width / 4; x < width*3/4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}

	return img
}

// pngHeader returns a PNG signature followed by a valid IHDR chunk for an 8-bit RGB
// image of the given size, without any pixel data.
func pngHeader(width, height uint32) []byte {
	chunk := []byte("IHDR")
	chunk = binary.BigEndian.AppendUint32(chunk, width)
	chunk = binary.BigEndian.AppendUint32(chunk, height)
	chunk = append(chunk, 8, 2, 0, 0, 0) // depth, RGB, compression, filter, interlace

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, uint32(len(chunk)-4))
	out = append(out, chunk...)

	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(chunk))
}
