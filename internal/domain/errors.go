package domain

import "errors"

// Error kinds. Handlers map these to status codes with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrAccountNotFound    = errors.New("user does not exist")
	ErrUnauthorized       = errors.New("unauthorized request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpiredOrUsed = errors.New("refresh token is expired or used")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrMediaUpload        = errors.New("media upload failed")
	ErrInternal           = errors.New("internal error")
)

// Error pairs an error kind with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Message returns the caller-facing message carried by err, falling back to
// the error text.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return err.Error()
}
