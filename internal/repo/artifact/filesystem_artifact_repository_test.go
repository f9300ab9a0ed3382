package artifact_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mkrupp/imagepipe/internal/domain"
	"github.com/mkrupp/imagepipe/internal/repo/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*artifact.FileSystemRepository, string) {
	t.Helper()

	basedir := filepath.Join(t.TempDir(), "out")

	repo, err := artifact.NewFileSystemArtifactRepository(context.Background(), artifact.FileSystemArtifactRepositoryConfig{
		Basedir:       basedir,
		MaxLoadSizeMB: 1,
	})
	require.NoError(t, err)

	return repo, basedir
}

func TestStore(t *testing.T) {
	t.Parallel()

	repo, basedir := setupRepo(t)
	ctx := context.Background()
	img := domain.NewEncodedImage([]byte("\xFF\xD8\xFFjpeg body"), domain.MIMETypeJPEG)

	assert.False(t, repo.Exists(ctx, img))

	filename, err := repo.Store(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(basedir, img.Hash()+".jpg"), filename)
	assert.True(t, repo.Exists(ctx, img))

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, img.Bytes(), content)

	again, err := repo.Store(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, filename, again)
}

func TestStoreConcurrent(t *testing.T) {
	t.Parallel()

	repo, basedir := setupRepo(t)
	img := domain.NewEncodedImage([]byte("same content from every worker"), domain.MIMETypeJPEG)

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := repo.Store(context.Background(), img)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	entries, err := os.ReadDir(basedir)
	require.NoError(t, err)

	require.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, img.Hash()+".jpg", entries[0].Name())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	repo, _ := setupRepo(t)
	dir := t.TempDir()

	tests := []struct {
		name     string
		mimeType string
	}{
		{"Holiday.JPG", "image/jpeg"},
		{"scan.png", "image/png"},
		{"sticker.webp", "image/webp"},
		{"notes.pdf", "application/pdf"},
		{"blob.unknownext", artifact.MIMETypeOctetStream},
	}

	for _, tc := range tests {
		path := filepath.Join(dir, tc.name)
		require.NoError(t, os.WriteFile(path, []byte("content of "+tc.name), 0o600))

		file, err := repo.Load(context.Background(), path)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.name, file.Filename)
		assert.Equal(t, tc.mimeType, file.MIMEType, tc.name)
		assert.Equal(t, []byte("content of "+tc.name), file.Data)
	}
}

func TestLoadFailures(t *testing.T) {
	t.Parallel()

	repo, _ := setupRepo(t)
	dir := t.TempDir()

	_, err := repo.Load(context.Background(), filepath.Join(dir, "missing.jpg"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = repo.Load(context.Background(), dir)
	require.ErrorIs(t, err, artifact.ErrNotRegularFile)

	large := filepath.Join(dir, "large.jpg")
	require.NoError(t, os.WriteFile(large, make([]byte, 1024*1024+1), 0o600))

	_, err = repo.Load(context.Background(), large)
	assert.ErrorIs(t, err, artifact.ErrFileTooLarge)
}
