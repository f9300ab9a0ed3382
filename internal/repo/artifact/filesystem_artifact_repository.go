package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkrupp/imagepipe/internal/domain"
	"github.com/mkrupp/imagepipe/internal/infra/logging"
)

var (
	ErrBytesWrittenMismatch = errors.New("bytes written mismatch")
	ErrBytesReadMismatch    = errors.New("bytes read mismatch")
	ErrFileTooLarge         = errors.New("file too large to load")
	ErrNotRegularFile       = errors.New("not a regular file")
)

const bytesPerMB = 1024 * 1024

// FileSystemArtifactRepositoryConfig holds configuration for the filesystem-based
// artifact repository.
type FileSystemArtifactRepositoryConfig struct {
	// Basedir is the directory outputs are written to.
	Basedir string `env:"BASEDIR" default:"var/imagepipe/out"`

	// MaxLoadSizeMB bounds the files Load reads into memory.
	MaxLoadSizeMB int `env:"MAX_LOAD_SIZE_MB" default:"64"`
}

// FileSystemRepository implements Repository using the local filesystem. Outputs are
// stored flat as <basedir>/<hash><ext>.
type FileSystemRepository struct {
	cfg FileSystemArtifactRepositoryConfig
	log logging.Logger
}

var _ Repository = (*FileSystemRepository)(nil)

// NewFileSystemArtifactRepository creates a FileSystemRepository, creating the base
// directory if needed.
func NewFileSystemArtifactRepository(
	ctx context.Context,
	cfg FileSystemArtifactRepositoryConfig,
) (*FileSystemRepository, error) {
	repo := &FileSystemRepository{
		cfg: cfg,
		log: logging.GetLogger("repo.artifact.filesystem_repository").With(
			logging.Group("repo", "basedir", cfg.Basedir),
		),
	}

	if err := repo.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}

	return repo, nil
}

func (fsRepo *FileSystemRepository) initStorage(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "init storage failed", "error", err)
		} else {
			fsRepo.log.DebugContext(ctx, "init storage")
		}
	}()

	if err := os.MkdirAll(fsRepo.cfg.Basedir, 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	return nil
}

// GetFilename returns the path img is stored under.
func (fsRepo *FileSystemRepository) GetFilename(img domain.EncodedImage) string {
	return filepath.Join(fsRepo.cfg.Basedir, img.Hash()+extByMIMEType(img.MIMEType()))
}

// Exists reports whether a file of img's size is stored under its hash.
func (fsRepo *FileSystemRepository) Exists(_ context.Context, img domain.EncodedImage) bool {
	info, err := os.Stat(fsRepo.GetFilename(img))

	return err == nil && info.Size() == img.Size()
}

// Load reads the regular file at path, refusing files over MaxLoadSizeMB. The MIME
// type is derived from the file extension.
func (fsRepo *FileSystemRepository) Load(ctx context.Context, path string) (file domain.SourceFile, err error) {
	log := fsRepo.log.With(logging.Group("artifact", "path", path))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "artifact load failed", "error", err)
		} else {
			log.DebugContext(ctx, "artifact loaded", "type", file.MIMEType, "size", file.Size())
		}
	}()

	handle, err := os.Open(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("open: %w", err)
	}
	defer handle.Close()

	info, err := handle.Stat()
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("stat: %w", err)
	}

	if !info.Mode().IsRegular() {
		return domain.SourceFile{}, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	maxBytes := int64(fsRepo.cfg.MaxLoadSizeMB) * bytesPerMB
	if info.Size() > maxBytes {
		return domain.SourceFile{}, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	data, err := io.ReadAll(io.LimitReader(handle, maxBytes+1))
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("read: %w", err)
	} else if int64(len(data)) != info.Size() {
		return domain.SourceFile{}, fmt.Errorf("%w: expected %d, got %d", ErrBytesReadMismatch, info.Size(), len(data))
	}

	name := filepath.Base(path)

	return domain.NewSourceFile(name, MIMETypeByFilename(name), data), nil
}

// Store writes img to a temporary file in the base directory and renames it into
// place, so readers never observe a partially written artifact.
func (fsRepo *FileSystemRepository) Store(ctx context.Context, img domain.EncodedImage) (filename string, err error) {
	filename = fsRepo.GetFilename(img)
	log := fsRepo.log.With(logging.Group("artifact", "filename", filename))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "artifact store failed", "error", err)
		} else {
			log.DebugContext(ctx, "artifact stored", "size", img.Size())
		}
	}()

	if fsRepo.Exists(ctx, img) {
		log = log.With("existing", true)

		return filename, nil
	}

	tmpname, err := fsRepo.writeTemp(img)
	if err != nil {
		return "", err
	}

	if err := os.Rename(tmpname, filename); err != nil {
		_ = os.Remove(tmpname)

		return "", fmt.Errorf("rename: %w", err)
	}

	return filename, nil
}

func (fsRepo *FileSystemRepository) writeTemp(img domain.EncodedImage) (tmpname string, err error) {
	file, err := os.CreateTemp(fsRepo.cfg.Basedir, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	defer file.Close()

	defer func() {
		if err != nil {
			_ = os.Remove(file.Name())
		}
	}()

	if bytes, err := img.WriteTo(file); err != nil {
		return "", fmt.Errorf("write: %w", err)
	} else if err := file.Sync(); err != nil {
		return "", fmt.Errorf("sync: %w", err)
	} else if info, err := file.Stat(); err != nil {
		return "", fmt.Errorf("stat: %w", err)
	} else if bytes != info.Size() || bytes != img.Size() {
		return "", fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, img.Size(), bytes)
	}

	if err := file.Chmod(0o644); err != nil {
		return "", fmt.Errorf("chmod: %w", err)
	}

	return file.Name(), nil
}
