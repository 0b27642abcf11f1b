// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation_error"
	ErrorTypeError       ErrorType = "processing_error"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeUnavailable ErrorType = "oracle_unavailable"
	ErrorTypeMalformed   ErrorType = "malformed_response"
)

// AppError is the application error carried across package boundaries.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // machine readable code returned to clients
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap supports errors.Is / errors.As chains
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the default code for its type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError creates a client input error
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewValidationErrorWithCode creates a client input error with an explicit code
func NewValidationErrorWithCode(code, message string) *AppError {
	err := NewAppError(ErrorTypeValidation, message, nil)
	err.Code = code
	return err
}

// NewProcessingError creates an internal processing error
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// NewTimeoutError creates a deadline error
func NewTimeoutError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTimeout, message, originalError)
}

// NewUnavailableError reports a remote oracle that could not serve the call
// (transport failure or non-2xx status).
func NewUnavailableError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUnavailable, message, originalError)
}

// NewMalformedResponseError reports an oracle response of unrecognized shape
func NewMalformedResponseError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeMalformed, message, originalError)
}

func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// IsValidationError reports whether err is a client input error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsTimeoutError reports whether err is a deadline error
func IsTimeoutError(err error) bool {
	return isType(err, ErrorTypeTimeout)
}

// IsUnavailableError reports whether err is an unavailable remote oracle
func IsUnavailableError(err error) bool {
	return isType(err, ErrorTypeUnavailable)
}

// IsMalformedResponseError reports whether err is an unrecognized oracle response
func IsMalformedResponseError(err error) bool {
	return isType(err, ErrorTypeMalformed)
}

// CodeOf returns the client code of err, or UNKNOWN_ERROR.
func CodeOf(err error) string {
	var appError *AppError
	if errors.As(err, &appError) && appError.Code != "" {
		return appError.Code
	}
	return generateErrorCode("")
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeUnavailable:
		return "ORACLE_UNAVAILABLE"
	case ErrorTypeMalformed:
		return "MALFORMED_RESPONSE"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError wraps err with message, keeping the type of an existing AppError.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
