// Package backend provides adapters for implementing the Backend
// interface of the flywheel library.
//
// These adapters make it easy to wrap plain fetch functions, in-memory
// fixtures, and tables of named fetch strategies as batch backends.
package backend
