// Package upload implements the storage engine behind the upload endpoint:
// random short-name generation, extension preservation, and the naming rules
// for persisting uploaded content into the target directory.
package upload

import (
	"errors"
	"io"
	"strings"
)

// Errors reported to callers. Anything else coming out of a store is an I/O
// failure and carries the attempted path in its message.
var (
	// ErrMissingExtension means the submitted filename contains no '.' and
	// therefore no extension to preserve.
	ErrMissingExtension = errors.New("filename has no extension")

	// ErrNameCollision means a keep-name store found an existing file under
	// the requested name. Keep-name stores never retry or overwrite.
	ErrNameCollision = errors.New("file already exists")

	// ErrRetriesExhausted means the store gave up generating candidate
	// names. At a sane name length this indicates a configuration defect,
	// not a transient condition.
	ErrRetriesExhausted = errors.New("no free filename found after maximum attempts")
)

// Request is one upload: the client-supplied filename, the content to store,
// and whether the original name should be kept verbatim.
type Request struct {
	Filename string
	Content  io.Reader
	KeepName bool
}

// FileStore persists upload content under a unique name inside a single
// directory. Implementations must claim names with an atomic exclusive
// create, so that two concurrent stores can never both succeed with the same
// name even across processes.
type FileStore interface {
	// StoreRandom writes content under a freshly generated name of the
	// given length with the extension appended, drawing new names on
	// collisions. It returns the name the content was stored under.
	StoreRandom(content io.Reader, length int, extension string) (string, error)

	// StoreNamed writes content under name verbatim. It returns
	// ErrNameCollision if the name is already taken.
	StoreNamed(content io.Reader, name string) (string, error)
}

// Extension returns the part of name after the last '.'. The result may be
// empty (a name ending in a bare dot) and is preserved as-is, case included.
// A name without any dot returns ErrMissingExtension.
func Extension(name string) (string, error) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", ErrMissingExtension
	}
	return name[i+1:], nil
}
