package document

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge rejects a selection above MaxFileSize. The session is
	// left exactly as it was.
	ErrFileTooLarge = errors.New("file exceeds the 10MB limit")
	ErrNoFile       = errors.New("no file selected")
	ErrRunInFlight  = errors.New("translation already in progress")
	// ErrSuperseded is returned by a run whose file was replaced while it
	// was in flight. Its result is discarded.
	ErrSuperseded = errors.New("translation superseded by a newer file")
)

// ReadError reports that the pending file's bytes could not be read.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// TranslationError reports that the translation backend did not produce an
// artifact.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }
