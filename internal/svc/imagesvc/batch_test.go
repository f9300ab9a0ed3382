package imagesvc_test

import (
	"context"
	"testing"

	"github.com/mkrupp/imagepipe/internal/domain"
	"github.com/mkrupp/imagepipe/internal/svc/imagesvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNormalize(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(cfg *imagesvc.ImageConfig) { cfg.Workers = 3 })

	files := []domain.SourceFile{
		jpegFile(t, gradient(1600, 1200)),
		domain.NewSourceFile("anim.gif", "image/gif", []byte("GIF89a")),
		pngFile(t, gradient(300, 200)),
		domain.NewSourceFile("broken.jpg", imagesvc.MIMETypeJPEG, []byte("nope")),
		pngFile(t, gradient(700, 1400)),
	}

	results := svc.BatchNormalize(context.Background(), files)
	require.Len(t, results, len(files))

	for i, result := range results {
		assert.Equal(t, files[i].Filename, result.File.Filename, "result %d out of order", i)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, 800, decodeJPEG(t, results[0].Image).Bounds().Dx())

	assert.ErrorIs(t, results[1].Err, domain.ErrUnsupportedType)

	require.NoError(t, results[2].Err)
	assert.Equal(t, 300, decodeJPEG(t, results[2].Image).Bounds().Dx())

	assert.ErrorIs(t, results[3].Err, domain.ErrDecode)

	require.NoError(t, results[4].Err)
	assert.Equal(t, 600, decodeJPEG(t, results[4].Image).Bounds().Dy())

	traceIDs := map[string]struct{}{}
	for _, result := range results {
		require.NotEmpty(t, result.TraceID)
		traceIDs[result.TraceID] = struct{}{}
	}

	assert.Len(t, traceIDs, len(files), "every item runs under its own trace id")
}

func TestBatchNormalizeCancelled(t *testing.T) {
	t.Parallel()

	svc := newService(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.BatchNormalize(ctx, []domain.SourceFile{
		jpegFile(t, gradient(10, 10)),
		jpegFile(t, gradient(20, 20)),
	})

	require.Len(t, results, 2)

	for _, result := range results {
		assert.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestBatchNormalizeEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, newService(t, nil).BatchNormalize(context.Background(), nil))
}
