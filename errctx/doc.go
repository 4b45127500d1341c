// Package errctx attaches structured diagnostic context to errors.
//
// It lets error messages stay short and generic while keeping the
// details a logger or debugger needs reachable from the error value.
// The library never renders or logs the fields itself; reporting is the
// caller's responsibility.
package errctx
