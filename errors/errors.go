// Package errors provides a printf-style error constructor.
//
// Errors created with New format their message lazily, and unwrap to the first
// argument that is itself an error, so that callers may use the standard
// errors.Is and errors.As on them.
package errors

import (
	"fmt"
)

type err struct {
	msg  string
	args []interface{}
}

func (err *err) Error() string {
	return fmt.Sprintf(err.msg, err.args...)
}

func (err *err) Unwrap() error {
	for _, arg := range err.args {
		if wrapped, ok := arg.(error); ok {
			return wrapped
		}
	}
	return nil
}

// New returns an error with message formatted from msg and args. Each call
// returns a distinct error, so it may be used for sentinel values.
func New(msg string, args ...interface{}) error {
	return &err{msg, args}
}

// Prefix returns an error with prefix prepended to the message of e, or nil if
// e is nil.
func Prefix(prefix string, e error) error {
	if e == nil {
		return nil
	}
	return &err{"%s: %v", []interface{}{prefix, e}}
}
