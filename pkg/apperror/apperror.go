// Package apperror carries client-facing failures: an HTTP status, a
// machine-readable code and a human-readable detail.
package apperror

import (
	"errors"
	"net/http"
)

// Machine-readable codes returned in the {detail, code} envelope.
const (
	CodeValidation         = "validation_error"
	CodeMissingCredentials = "missing_credentials"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotVerified   = "email_not_verified"
	CodeAlreadyVerified    = "already_verified"
	CodeEmailExists        = "email_exists"
	CodeNotAuthenticated   = "not_authenticated"
	CodeTokenNotValid      = "token_not_valid"
	CodePermissionDenied   = "permission_denied"
	CodeUserNotFound       = "user_not_found"
	CodeInvalidOTP         = "invalid_otp"
	CodeOTPExpired         = "expired"
	CodeOTPExceeded        = "exceeded"
	CodeOTPNotFound        = "otp_not_found"
	CodeEventNotFound      = "event_not_found"
	CodeMissingEvent       = "missing_event"
	CodeAlreadyEnrolled    = "already_enrolled"
	CodeCapacityFull       = "capacity_full"
	CodePastEvent          = "past_event"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeServerError        = "server_error"
)

// AppError is an expected failure surfaced to the client as-is.
type AppError struct {
	Status int
	Code   string
	Detail string
	Fields map[string]string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(status int, code, detail string) *AppError {
	return &AppError{Status: status, Code: code, Detail: detail}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func BadRequest(code, detail string) *AppError {
	return New(http.StatusBadRequest, code, detail)
}

func Validation(fields map[string]string) *AppError {
	return &AppError{
		Status: http.StatusBadRequest,
		Code:   CodeValidation,
		Detail: "Validation failed.",
		Fields: fields,
	}
}

func Unauthorized(code, detail string) *AppError {
	return New(http.StatusUnauthorized, code, detail)
}

func Forbidden(code, detail string) *AppError {
	return New(http.StatusForbidden, code, detail)
}

func PermissionDenied(detail string) *AppError {
	return New(http.StatusForbidden, CodePermissionDenied, detail)
}

func NotFound(code, detail string) *AppError {
	return New(http.StatusNotFound, code, detail)
}

func MethodNotAllowed(detail string) *AppError {
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed, detail)
}

func Internal(err error) *AppError {
	return &AppError{
		Status: http.StatusInternalServerError,
		Code:   CodeServerError,
		Detail: "Internal server error.",
		Err:    err,
	}
}
