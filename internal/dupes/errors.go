package dupes

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRoot is returned when the root path is missing, not a directory or unreadable.
	ErrInvalidRoot = errors.New("invalid root")
	// ErrDirectoryRead marks a subdirectory that could not be listed and was skipped.
	ErrDirectoryRead = errors.New("reading directory")
	// ErrRead marks a candidate file that could not be read in full for hashing.
	ErrRead = errors.New("reading file")
	// ErrInvalidSelection is returned when a deletion request is empty or names unknown numbers.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrDeleteFailed marks a single file of a deletion batch that could not be removed.
	ErrDeleteFailed = errors.New("deleting file")
)

// PathError records a failure tied to one path.
// It unwraps to both its Kind sentinel and the underlying cause.
type PathError struct {
	// Kind is one of the package sentinels.
	Kind error
	// Path is the file or directory involved.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *PathError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func pathError(kind error, path string, err error) *PathError {
	return &PathError{Kind: kind, Path: path, Err: err}
}
