// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package is an *Error whose
// Kind is one of these, so callers can branch with errors.Is.
var (
	ErrInvalidFile   = errors.New("invalid or missing PDF")
	ErrUpload        = errors.New("file upload failed")
	ErrSubmit        = errors.New("job submission failed")
	ErrJobStatus     = errors.New("job status check failed")
	ErrJobFailed     = errors.New("compression job failed")
	ErrPollTimeout   = errors.New("compression job timed out")
	ErrMissingResult = errors.New("no result URL provided")
	ErrDownload      = errors.New("download failed")
	ErrSerialize     = errors.New("document serialization failed")
)

// Error is the single error type surfaced by the compression driver. Op
// names the step that failed ("upload", "poll", "rewrite", ...).
type Error struct {
	Kind     error
	Strategy string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s compression: %s: %v", e.Strategy, e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, strategy, op string, err error) *Error {
	return &Error{Kind: kind, Strategy: strategy, Op: op, Err: err}
}

// asError returns err unchanged if it already is an *Error, otherwise wraps
// it with the given kind.
func asError(err error, kind error, strategy, op string) error {
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return newError(kind, strategy, op, err)
}
