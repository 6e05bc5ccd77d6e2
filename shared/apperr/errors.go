// Package apperr defines the application error taxonomy shared by all
// services. Business-rule failures are always returned to the caller as
// typed errors, never swallowed; handlers map them onto the API envelope.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies the error class
type Code string

const (
	CodeValidation       Code = "validation_error"
	CodeNotFound         Code = "not_found"
	CodeInvalidState     Code = "invalid_state"
	CodeProtectedFeature Code = "protected_feature"
	CodeAuthentication   Code = "authentication_error"
	CodeAuthorization    Code = "authorization_error"
	CodeCorruptBackup    Code = "corrupt_backup"
	CodeDependency       Code = "dependency_error"
)

// Error is a typed application error
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation marks malformed or missing input, rejected before any store access
func Validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound marks a referenced entity that does not exist or is out of scope
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidState marks an operation against an entity in a terminal or
// incompatible state
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// ProtectedFeature marks an attempt to remove a core feature
func ProtectedFeature(featureID string) *Error {
	return &Error{Code: CodeProtectedFeature, Message: fmt.Sprintf("feature %q is a core feature and cannot be disabled", featureID)}
}

// Authentication marks a missing or unusable caller credential
func Authentication(message string) *Error {
	return &Error{Code: CodeAuthentication, Message: message}
}

// Authorization marks insufficient caller privilege
func Authorization(message string) *Error {
	return &Error{Code: CodeAuthorization, Message: message}
}

// CorruptBackup marks a snapshot blob that could not be parsed
func CorruptBackup(cause error) *Error {
	return &Error{Code: CodeCorruptBackup, Message: "backup snapshot is unreadable", Cause: cause}
}

// Dependency marks a store or blob storage failure, distinct from
// business-rule errors
func Dependency(message string, cause error) *Error {
	return &Error{Code: CodeDependency, Message: message, Cause: cause}
}

// CodeOf extracts the error code, defaulting unknown errors to dependency
// failures so transport layers never leak raw internals as business errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeDependency
}

// Is reports whether err carries the given code
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
