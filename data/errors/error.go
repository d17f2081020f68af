package errors

import (
	"errors"
	"fmt"
	"sync"
)

// Error kinds. Every error produced by the constructors in this package wraps
// exactly one of these, so callers can match with errors.Is.
var (
	// Content detection
	ErrUnknownFileContentType = errors.New("media: unknown file content-type")
	ErrImageLoad              = errors.New("media: image load failed")

	// Filesystem
	ErrDirectory  = errors.New("media: directory error")
	ErrNoSuchFile = errors.New("media: no such file")
	ErrBusy       = errors.New("media: resource busy")

	// Records
	ErrTimestamp    = errors.New("media: timestamp conversion failed")
	ErrItemNotFound = errors.New("media: item not found")
	ErrNoSuchRepo   = errors.New("media: no such repo")
	ErrUsedRepoName = errors.New("media: repo name already used")
	ErrTagNotFound  = errors.New("media: tag not found")
	ErrInvalid      = errors.New("media: invalid argument")
)

type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}

// newError formats a message below kind and, when err is set, keeps it in the chain.
func newError(kind error, err error, format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", kind, text, err)
	}

	return fmt.Errorf("%w: %s", kind, text)
}
