package apperr

import (
	"fmt"
	"net/http"
)

// Error carries an HTTP status, a stable machine-readable code and an
// optional human-readable message surfaced to the client.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Public returns the message shown to the client.
func (e *Error) Public() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Authentication failures (token layer).
const (
	CodeMissingToken     = "missing_token"
	CodeMalformedToken   = "malformed_token"
	CodeInvalidSignature = "invalid_signature"
	CodeTokenExpired     = "token_expired"
)

func MissingToken() *Error {
	return New(http.StatusUnauthorized, CodeMissingToken, "access token required")
}

func MalformedToken() *Error {
	return New(http.StatusUnauthorized, CodeMalformedToken, "malformed token")
}

func InvalidSignature() *Error {
	return New(http.StatusUnauthorized, CodeInvalidSignature, "invalid token signature")
}

func TokenExpired() *Error {
	return New(http.StatusUnauthorized, CodeTokenExpired, "token expired")
}

// Authorization failures (permission layer).
const (
	CodeInsufficientRole    = "insufficient_role"
	CodeNotOwner            = "not_owner"
	CodeSelfActionForbidden = "self_action_forbidden"
)

func InsufficientRole() *Error {
	return New(http.StatusForbidden, CodeInsufficientRole, "insufficient permissions")
}

func NotOwner() *Error {
	return New(http.StatusForbidden, CodeNotOwner, "you can only access your own store")
}

func SelfActionForbidden() *Error {
	return New(http.StatusBadRequest, CodeSelfActionForbidden, "cannot perform this action on your own account")
}

// Client-correctable conflicts, derived from constraint rejections.
const (
	CodeDuplicateRating = "duplicate_rating"
	CodeDuplicateEmail  = "duplicate_email"
)

func DuplicateRating() *Error {
	return New(http.StatusConflict, CodeDuplicateRating, "you have already rated this store")
}

func DuplicateEmail() *Error {
	return New(http.StatusConflict, CodeDuplicateEmail, "email already exists")
}

const (
	CodeValidation = "validation_failed"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal_error"
)

// Validation reports a single field constraint violation.
func Validation(field, constraint string) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Sprintf("%s: %s", field, constraint))
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error", Err: err}
}
