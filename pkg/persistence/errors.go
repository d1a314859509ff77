package persistence

import (
	"errors"
	"fmt"

	"github.com/dukex/decmed/pkg/models"
)

var (
	// ErrSessionNotFound indicates no snapshot was saved for the client.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCorruptSession indicates a stored snapshot could not be decoded.
	ErrCorruptSession = errors.New("corrupt session snapshot")
)

// SessionError wraps a store failure with the operation and client.
type SessionError struct {
	Op     string
	Client models.ClientKind
	Err    error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for %s session: %v", e.Op, e.Client, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewSessionError(op string, client models.ClientKind, err error) *SessionError {
	return &SessionError{
		Op:     op,
		Client: client,
		Err:    err,
	}
}

// IsSessionNotFound checks if an error indicates no snapshot exists.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsCorruptSession(err error) bool {
	return errors.Is(err, ErrCorruptSession)
}
