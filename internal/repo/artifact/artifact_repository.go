package artifact

import (
	"context"

	"github.com/mkrupp/imagepipe/internal/domain"
)

// Repository loads source files from and stores pipeline outputs to some storage.
type Repository interface {
	// Load reads the file at path. The MIME type is derived from the filename.
	Load(ctx context.Context, path string) (domain.SourceFile, error)

	// Store persists img under its content hash and returns the path written.
	// Storing the same content twice is a no-op.
	Store(ctx context.Context, img domain.EncodedImage) (string, error)

	// Exists reports whether img has already been stored.
	Exists(ctx context.Context, img domain.EncodedImage) bool
}
