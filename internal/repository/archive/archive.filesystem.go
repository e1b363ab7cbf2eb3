// FilePath: server/telemetry/internal/repository/archive/archive.filesystem.go
package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultPermissions = 0755
	filePermissions    = 0644
)

// FileArchive keeps archived payloads below a local base directory,
// using the blob path as the relative file path.
type FileArchive struct {
	basePath string
}

// NewFileArchive creates the base directory if needed
func NewFileArchive(basePath string) (*FileArchive, error) {
	if err := createDirectoryIfNotExists(basePath); err != nil {
		return nil, err
	}
	return &FileArchive{basePath: basePath}, nil
}

var _ repository.ArchiveRepository = (*FileArchive)(nil)

func (r *FileArchive) Put(ctx context.Context, obj models.ArchiveObject, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStorageError("archive write cancelled", err)
	}

	fullPath, err := r.resolve(obj.Path)
	if err != nil {
		return err
	}

	if err := createDirectoryIfNotExists(filepath.Dir(fullPath)); err != nil {
		return err
	}

	// write next to the target and rename so readers never see a partial blob
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return errors.NewStorageError("failed to create archive file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewStorageError("failed to write archive file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError("failed to close archive file", err)
	}
	if err := os.Chmod(tmp.Name(), filePermissions); err != nil {
		return errors.NewStorageError("failed to set archive file permissions", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return errors.NewStorageError("failed to store archive file", err)
	}

	nuts.L.Debugf("[FileArchive] Stored %s (%d bytes)", obj.Path, len(data))
	return nil
}

func (r *FileArchive) Delete(ctx context.Context, path string) error {
	fullPath, err := r.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("archive object not found", repository.ErrNotFound)
		}
		return errors.NewStorageError("failed to delete archive file", err)
	}

	nuts.L.Infof("[FileArchive] Deleted %s", path)
	return nil
}

func (r *FileArchive) resolve(path string) (string, error) {
	for _, segment := range strings.Split(path, "/") {
		if !models.ValidPathSegment(segment) {
			return "", errors.NewValidationError("invalid archive path", nil).WithDetails(map[string]string{"path": path})
		}
	}
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return "", errors.NewValidationError("archive path escapes the base directory", nil).WithDetails(map[string]string{"path": path})
	}
	return filepath.Join(r.basePath, rel), nil
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewStorageError("failed to create directory", err)
		}
	}
	return nil
}
