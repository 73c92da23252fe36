// Package fs stores uploaded files in a directory on the local filesystem.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spaarmann/reasonable-excuse/internal/upload"
)

// maxAttempts bounds the random-name retry loop. Hitting it means the name
// space is effectively exhausted, for example a zero name length against a
// non-empty directory.
const maxAttempts = 1000

// Storage implements upload.FileStore on a single pre-existing directory.
// It keeps no naming state of its own: the filesystem's exclusive-create
// guarantee is the only thing preventing two stores, in this process or any
// other, from claiming the same name.
type Storage struct {
	dir      string
	generate upload.NameFunc
}

// NewStorage returns a Storage writing into dir. The directory must already
// exist; it is never created here, and nothing inside it is ever deleted or
// overwritten.
func NewStorage(dir string) (*Storage, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check upload target dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("upload target path %s is not a directory", dir)
	}

	return &Storage{
		dir:      dir,
		generate: upload.NewName,
	}, nil
}

// StoreRandom stores content under a generated name with the extension
// appended, drawing fresh names until one is free. An empty extension
// produces a name ending in a bare dot; that matches what the caller
// submitted and is stored as-is.
func (s *Storage) StoreRandom(content io.Reader, length int, extension string) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := s.generate(length) + "." + extension
		path := filepath.Join(s.dir, name)

		file, err := s.createNew(path)
		if os.IsExist(err) {
			// Happened to generate a name that is already taken; try again.
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file %s: %w", path, err)
		}

		if err := writeAll(file, content); err != nil {
			return "", err
		}
		return name, nil
	}

	return "", fmt.Errorf("%w (name length %d, dir %s)", upload.ErrRetriesExhausted, length, s.dir)
}

// StoreNamed stores content under name verbatim. Unlike StoreRandom an
// existing file is a hard error: the caller asked for this exact name, so
// renaming or overwriting behind their back is not an option.
func (s *Storage) StoreNamed(content io.Reader, name string) (string, error) {
	path := filepath.Join(s.dir, name)

	file, err := s.createNew(path)
	if os.IsExist(err) {
		return "", fmt.Errorf("%w: %s", upload.ErrNameCollision, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if err := writeAll(file, content); err != nil {
		return "", err
	}
	return name, nil
}

// createNew creates the file at path, failing if it already exists. The
// existence check and the create are a single syscall (O_CREATE|O_EXCL);
// there must never be a separate existence probe before it.
func (s *Storage) createNew(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// writeAll copies all of content into file and closes it. On failure the
// partially written file stays in place; the caller is told the store
// failed and must not trust the name to hold complete content.
func writeAll(file *os.File, content io.Reader) error {
	_, err := io.Copy(file, content)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", file.Name(), err)
	}
	return nil
}
