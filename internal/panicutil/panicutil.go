// Package panicutil converts panics into errors.
package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// Call invokes the function and returns its error.
// If the function panics, Call recovers and returns the panic value as a
// *panics.ErrRecovered instead of unwinding the caller.
func Call(f func() error) error {
	var (
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		err = f()
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return recovered.AsError()
	}
	return err
}
