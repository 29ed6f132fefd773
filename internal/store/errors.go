package store

import "fmt"

// GuestScope identifies the unauthenticated scope in PersistenceError.
const GuestScope = "guest"

// PersistenceError is a backing-store read/write failure. It carries the
// attempted operation and the scope it ran against; callers log it and keep
// their prior in-memory state.
type PersistenceError struct {
	Op    string
	Scope string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s (scope %s): %v", e.Op, e.Scope, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
