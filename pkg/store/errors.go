package store

import (
	"errors"
	"fmt"

	"github.com/papyrusworks/papyrus/pkg/docpath"
	"github.com/papyrusworks/papyrus/pkg/docref"
)

// Sentinel errors for the store API. Callers match them with errors.Is;
// the HTTP layer translates them into status codes.
var (
	// ErrNotFound means the reference resolved to no live entity.
	ErrNotFound = errors.New("document not found")

	// ErrDocumentNotFound means the document a redirect operation
	// targets does not exist.
	ErrDocumentNotFound = errors.New("referenced document does not exist")

	// ErrPathConflict means another live document or redirect already
	// owns the requested path. Never silently resolved.
	ErrPathConflict = errors.New("path is already in use")

	// ErrInvalidPath aliases the path validator's sentinel so every
	// failure of the store API is matchable against this one package.
	ErrInvalidPath = docpath.ErrInvalidPath

	// ErrInvalidReference aliases the reference parser's sentinel.
	ErrInvalidReference = docref.ErrInvalidReference
)

// Error wraps a failure with the store operation that raised it.
type Error struct {
	// Op is the operation that failed (e.g. "Upsert", "AddRedirect").
	Op string

	// Err is the underlying error, usually one of the sentinels.
	Err error

	// Msg is optional context about the failure.
	Msg string
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Msg, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the underlying error for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// wrapOp ties an error to the public operation that raised it, unless
// it already carries one.
func wrapOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Err: err}
}
