package marker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Filename is the marker file inside an installation directory.
	Filename = "version"

	// fileMode is applied when stamping a staged installation.
	fileMode os.FileMode = 0o644
)

// Repository defines persistence operations for the version marker.
type Repository interface {
	Installed(ctx context.Context) (string, error)
	Stamp(ctx context.Context, dir, name string) error
}

// FileRepository reads and writes the plain-text version marker on disk.
type FileRepository struct {
	// target is the live installation directory holding the marker.
	target string
}

// NewFileRepository creates a repository bound to the given installation directory.
func NewFileRepository(target string) *FileRepository {
	return &FileRepository{
		target: filepath.Clean(target),
	}
}

// Installed returns the recorded installed version, verbatim, trailing
// whitespace included. A missing marker is a normal outcome meaning
// "nothing installed" and yields the empty string. Any other read failure
// is propagated.
func (r *FileRepository) Installed(_ context.Context) (string, error) {
	contents, err := os.ReadFile(filepath.Join(r.target, Filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("read version marker: %w", err)
	}

	return string(contents), nil
}

// Stamp records the release name inside the given directory, typically the
// staging directory before promotion. The name is written exactly as given,
// with no trailing newline added.
func (r *FileRepository) Stamp(_ context.Context, dir, name string) error {
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(name), fileMode); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}

	return nil
}
