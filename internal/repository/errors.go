// Package repository turns the raw string key-value medium into typed
// records.  Values are JSON documents; the keys the service owns are listed
// below, any other key is carried along opaquely by backup and restore.
package repository

import (
	"errors"
	"fmt"
)

// ErrPersistence matches every *PersistenceError with errors.Is.  Handlers
// should translate it into an HTTP 500 response.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError reports a medium read or write failure, or a value that
// could not be serialised.
type PersistenceError struct {
	Op  string // load, save, keys, clear, snapshot, replace
	Key string // empty for whole-store operations
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match regardless of the cause.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
