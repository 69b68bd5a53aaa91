package conversion

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

// Error tags a pipeline failure with its kind.
type Error struct {
	Kind domain.ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause stop at the tagged error.
func (e *Error) Cause() error { return e.Err }

func newError(kind domain.ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind carried by err, or KindStreamingFault for untagged errors.
func KindOf(err error) domain.ErrorKind {
	if err == nil {
		return domain.KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return domain.KindStreamingFault
}
