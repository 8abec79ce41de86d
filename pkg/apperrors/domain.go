package apperrors

import (
	"net/http"
)

// Factories used by services to translate repository errors.

// ErrNotFound is a 404 wrapping a repository error.
func ErrNotFound(err error) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, "resource", "Not found.").WithError(err)
}

// ErrAlreadyExists is a 409 for duplicates that are not field validation failures.
func ErrAlreadyExists(err error) *AppError {
	return newError(http.StatusConflict, CodeAlreadyExists, "resource", "Resource already exists").WithError(err)
}

func ErrConflict(err error, domain, message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, domain, message).WithError(err)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return newError(http.StatusBadRequest, CodeInvalidOperation, domain, message)
}

// ErrInvalidStatus is a 400 for rejected status values or transitions.
func ErrInvalidStatus(domain, message string) *AppError {
	return newError(http.StatusBadRequest, CodeInvalidStatus, domain, message).
		WithDetails(map[string]string{"status": message})
}

// Shared values. Never call WithDetails or WithError on these.
var (
	ErrInsufficientPermissions = newError(http.StatusForbidden, CodeForbidden, "auth",
		"You do not have permission to perform this action.")
	ErrAuthenticationRequired = newError(http.StatusUnauthorized, CodeUnauthorized, "auth",
		"Authentication credentials were not provided.")
	ErrFileTooLarge = newError(http.StatusRequestEntityTooLarge, CodeLimitExceeded, "validation",
		"File size exceeds the allowed limit")
	ErrInvalidFileType = newError(http.StatusUnsupportedMediaType, CodeValidationFailed, "validation",
		"The provided file type is not allowed")
	ErrInvalidCredentials = newError(http.StatusUnauthorized, CodeInvalidCredentials, "auth",
		"No active account found with the given credentials")
	ErrInvalidToken = newError(http.StatusUnauthorized, CodeInvalidToken, "auth",
		"Token is invalid or expired")
	ErrUserInactive = newError(http.StatusUnauthorized, CodeUnauthorized, "auth",
		"User is inactive")
)
