package domain

import "errors"

// ErrorKind classifies a failure reported to clients.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

const (
	MsgCredentialsRequired = "Bad request: username and password are required"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgUnauthorized        = "Unauthorized"
	MsgInternal            = "Internal server error"
)

// ErrInvalidCredential is returned by credential codecs for absent, malformed
// or tampered tokens.
var ErrInvalidCredential = errors.New("invalid credential")

// Error is the only error type services hand to the transport layer. Message
// is always safe to render; Err keeps the underlying cause for logging.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Internal wraps an unexpected fault. The fault text becomes the message,
// falling back to MsgInternal when there is none.
func Internal(err error) *Error {
	msg := MsgInternal
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err. Anything that is not an *Error is internal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
