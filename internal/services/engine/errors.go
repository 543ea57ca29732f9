package engine

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind int

const (
	KindFailed ErrorKind = iota
	KindPrivate
	KindForbidden
	KindNotFound
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrivate:
		return "private"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnsupported:
		return "unsupported"
	default:
		return "failed"
	}
}

// Error is returned by engines for every extraction or download failure.
// Message carries the engine's diagnostic output and is only meant for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("engine %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("engine %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNoInfo is reported when the engine succeeds but yields no metadata.
var ErrNoInfo = &Error{Kind: KindNotFound, Message: "engine returned no media info"}

var kindMarkers = []struct {
	kind    ErrorKind
	markers []string
}{
	{KindPrivate, []string{"private video", "video is private", "granted access to this video"}},
	{KindForbidden, []string{"http error 403", "blocked", "forbidden", "sign in to confirm", "not available in your country"}},
	{KindNotFound, []string{"http error 404", "video unavailable", "has been removed", "does not exist"}},
	{KindUnsupported, []string{"unsupported url", "is not a valid url"}},
}

// Classify wraps err as an *Error whose kind is derived from the error text
// and any extra diagnostic output such as the engine's stderr.
func Classify(err error, diagnostics string) *Error {
	if err == nil {
		return nil
	}

	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr
	}

	message := strings.TrimSpace(diagnostics)
	if message == "" {
		message = err.Error()
	}
	text := strings.ToLower(err.Error() + "\n" + diagnostics)

	for _, km := range kindMarkers {
		for _, marker := range km.markers {
			if strings.Contains(text, marker) {
				return &Error{Kind: km.kind, Message: message, Err: err}
			}
		}
	}

	return &Error{Kind: KindFailed, Message: message, Err: err}
}

// KindOf returns the kind of an engine error, or KindFailed for anything else.
func KindOf(err error) ErrorKind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return KindFailed
}
