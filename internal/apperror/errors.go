package apperror

import "errors"

// Domain-level sentinel errors for the conversation lifecycle and the
// realtime protocol. They carry no HTTP or websocket specifics; the
// controller and session layers translate them at the boundary.

var (
	// ErrForbidden indicates a role or ownership mismatch. The operation is
	// rejected without any state change.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the referenced resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the candidate already holds an open or assigned
	// conversation.
	ErrConflict = errors.New("candidate already has an active conversation")

	// ErrAlreadyClosed indicates the conversation reached its terminal state.
	ErrAlreadyClosed = errors.New("conversation already closed")

	// ErrNotAssigned indicates a realtime close attempt on a conversation
	// that is still open (the bound agent has never joined).
	ErrNotAssigned = errors.New("conversation not yet assigned")

	// ErrInvalidReference indicates a foreign id that does not resolve to a
	// user with the required role (missing supervisor, agent of another
	// supervisor, and so on).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrValidation indicates a malformed request payload.
	ErrValidation = errors.New("invalid request schema")
)

// AuthError terminates a realtime connect attempt. It is never retried by
// the server.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

func NewAuthError(reason string) *AuthError {
	return &AuthError{Reason: reason}
}
