package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers missing, malformed or expired credentials
	// and credentials that resolve to a user that no longer exists.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization means the caller is authenticated but not allowed
	// to act on the room or resource.
	ErrAuthorization = errors.New("not authorized")
	// ErrValidation means a malformed inbound payload.
	ErrValidation = errors.New("invalid payload")
	// ErrNotFound is returned by the store when a row is absent.
	ErrNotFound = errors.New("not found")
)

// PersistenceError wraps a failed durable-store operation. The router
// reports it to the originating connection only and fans out nothing.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
