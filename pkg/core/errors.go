package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnknownKind       = errors.New("unknown kind")
	ErrNotFound          = errors.New("instance not found")
	ErrReconstruction    = errors.New("reconstruction failed")
	ErrCast              = errors.New("invalid attribute value")
	ErrReadOnlyAttribute = errors.New("attribute is read-only")
	ErrDetached          = errors.New("entity is detached (missing saver)")
)

// CastError reports a value that could not be converted to the declared type of a field.
type CastError struct {
	Kind  string
	Field string
	Type  TypeTag
	Value any
	Err   error
}

func (e *CastError) Error() string {
	msg := fmt.Sprintf("%s.%s expects %s, got %#v", e.Kind, e.Field, e.Type, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrCast) hold for every CastError.
func (e *CastError) Is(target error) bool {
	return target == ErrCast
}

func (e *CastError) Unwrap() error {
	return e.Err
}
