package errctx

import (
	"errors"
	"maps"
)

// Fields is a set of diagnostic fields attached to an error.
type Fields map[string]any

type contextError struct {
	err    error
	fields Fields
}

// Error returns the message of the wrapped error, unchanged.
func (e *contextError) Error() string {
	return e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *contextError) Unwrap() error {
	return e.err
}

// With attaches diagnostic fields to an error without altering its
// message. The fields become visible through From; attaching fields to an
// error that already carries some merges the two sets instead of
// replacing them, with the newer fields taking precedence on collision.
// With returns nil if err is nil.
func With(err error, fields Fields) error {
	if err == nil {
		return nil
	}
	return &contextError{err: err, fields: maps.Clone(fields)}
}

// From collects the diagnostic fields attached anywhere in the error's
// wrap chain. Fields attached closer to the surface override fields with
// the same name attached deeper in the chain. It returns nil if the error
// carries no fields.
func From(err error) Fields {
	var collected []Fields
	for err != nil {
		var ce *contextError
		if !errors.As(err, &ce) {
			break
		}
		collected = append(collected, ce.fields)
		err = ce.err
	}
	if len(collected) == 0 {
		return nil
	}

	fields := Fields{}
	for i := len(collected) - 1; i >= 0; i-- {
		maps.Copy(fields, collected[i])
	}
	return fields
}
