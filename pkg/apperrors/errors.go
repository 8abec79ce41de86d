package apperrors

import (
	"fmt"
	"net/http"
)

// AppError is the error type every service returns to the HTTP layer.
// Only Code, Domain, Message and Details reach the client.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Domain   string      `json:"domain"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Domain, e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is the HTTP status to answer with, 500 when unset.
func (e *AppError) Status() int {
	if e.HTTPCode == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPCode
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func newError(status int, code ErrorCode, domain, message string) *AppError {
	return &AppError{Code: code, Domain: domain, Message: message, HTTPCode: status}
}

// InternalError hides err behind a generic message; the cause stays
// available to logs through Unwrap.
func InternalError(err error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternalError, "system", "Internal server error").WithError(err)
}

// ValidationError is a 400 carrying field-level messages.
func ValidationError(details interface{}) *AppError {
	return newError(http.StatusBadRequest, CodeValidationFailed, "validation", "Validation failed").WithDetails(details)
}

// FieldError is a ValidationError for a single field.
func FieldError(field, message string) *AppError {
	return ValidationError(map[string]string{field: message})
}

func NewUnauthorizedError(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, "auth", message)
}

func NewForbiddenError(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, "auth", message)
}

func NewBadRequestError(message string) *AppError {
	return newError(http.StatusBadRequest, CodeValidationFailed, "request", message)
}

// NewRateLimitedError is returned when a throttle window is exhausted.
func NewRateLimitedError(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited, "throttle", "Request was throttled").
		WithDetails(map[string]int{"retry_after": retryAfterSeconds})
}
