package imagesvc_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/mkrupp/imagepipe/internal/svc/imagesvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	t.Parallel()

	encoded, err := imagesvc.Compress(raster(t, gradient(120, 80)), 0.8)
	require.NoError(t, err)

	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, encoded.Bytes()[:3])

	decoded := decodeJPEG(t, encoded)
	assert.Equal(t, image.Rect(0, 0, 120, 80), decoded.Bounds())
}

func TestCompressQualityOrdersSize(t *testing.T) {
	t.Parallel()

	src := raster(t, noise(96, 96))

	low, err := imagesvc.Compress(src, 0.3)
	require.NoError(t, err)

	high, err := imagesvc.Compress(src, 0.95)
	require.NoError(t, err)

	assert.Less(t, low.Size(), high.Size())
}

func TestCompressIsDeterministic(t *testing.T) {
	t.Parallel()

	src := raster(t, gradient(50, 50))

	first, err := imagesvc.Compress(src, 0.8)
	require.NoError(t, err)

	second, err := imagesvc.Compress(src, 0.8)
	require.NoError(t, err)

	assert.Equal(t, first.Hash(), second.Hash())
}

func TestCompressRejectsQuality(t *testing.T) {
	t.Parallel()

	src := raster(t, gradient(4, 4))

	for _, quality := range []float64{0, -0.5, 1.01} {
		_, err := imagesvc.Compress(src, quality)
		assert.ErrorIs(t, err, imagesvc.ErrInvalidQuality, "quality %v", quality)
	}
}

func TestCompressFlattensAlpha(t *testing.T) {
	t.Parallel()

	transparent := raster(t, image.NewNRGBA(image.Rect(0, 0, 16, 16)))

	onWhite, err := imagesvc.Compress(transparent, 0.9)
	require.NoError(t, err)
	assert.True(t, near(decodeJPEG(t, onWhite).At(8, 8), color.White, 8))

	onBlack, err := imagesvc.CompressOnto(transparent, 0.9, color.Black)
	require.NoError(t, err)
	assert.True(t, near(decodeJPEG(t, onBlack).At(8, 8), color.Black, 8))
}

func TestJPEGQuality(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 80, imagesvc.JPEGQuality(0.8))
	assert.Equal(t, 60, imagesvc.JPEGQuality(0.6))
	assert.Equal(t, 90, imagesvc.JPEGQuality(0.9))
	assert.Equal(t, 100, imagesvc.JPEGQuality(1))
	assert.Equal(t, 1, imagesvc.JPEGQuality(0.001))
}
