package raster

import (
	"errors"
	"fmt"
)

// ErrNoImage is returned by operations that need a loaded image.
var ErrNoImage = errors.New("no image loaded")

// LoadError reports a file that could not be opened or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a failure to write the working image.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save image %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ExportError reports a failure to write the softened export image.
type ExportError struct {
	Path  string
	Level int
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export image %s (soften level %d): %v", e.Path, e.Level, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
