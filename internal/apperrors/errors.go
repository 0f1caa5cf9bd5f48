package apperrors

import (
	"errors"
	"fmt"

	"skywatch/crewdeck/internal/constants"
)

// Error is the typed error every service and repository returns for
// conditions a caller is expected to handle.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on code so errors.Is(err, apperrors.ErrPermissionDenied) works
// for any permission failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is
var (
	ErrValidation          = &Error{Code: constants.ErrCodeValidation}
	ErrInvalidDateRange    = &Error{Code: constants.ErrCodeInvalidDateRange}
	ErrAvailabilityOverlap = &Error{Code: constants.ErrCodeAvailabilityOverlap}
	ErrInvalidStatus       = &Error{Code: constants.ErrCodeInvalidStatus}
	ErrPermissionDenied    = &Error{Code: constants.ErrCodePermissionDenied}
	ErrUnauthenticated     = &Error{Code: constants.ErrCodeUnauthenticated}
	ErrNotFound            = &Error{Code: constants.ErrCodeNotFound}
	ErrConstraint          = &Error{Code: constants.ErrCodeConstraintViolation}
	ErrBackendUnavailable  = &Error{Code: constants.ErrCodeBackendUnavailable}
	ErrStorageFailed       = &Error{Code: constants.ErrCodeStorageFailed}
)

// New builds an Error with the default message for code
func New(code string, err error) *Error {
	return &Error{Code: code, Message: constants.GetErrorMessage(code), Err: err}
}

// Newf builds an Error with a custom message
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return Newf(constants.ErrCodeValidation, format, args...)
}

func NotFound(entity, id string) *Error {
	return Newf(constants.ErrCodeNotFound, "%s %s not found", entity, id)
}

func PermissionDenied(format string, args ...any) *Error {
	return Newf(constants.ErrCodePermissionDenied, format, args...)
}

func Backend(err error) *Error {
	return New(constants.ErrCodeBackendUnavailable, err)
}

// CodeOf returns the code of the first *Error in the chain, or "" if none
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsPermanent reports whether retrying err can never succeed.
// Validation and authorization failures are permanent, store failures are not.
func IsPermanent(err error) bool {
	switch CodeOf(err) {
	case constants.ErrCodeValidation,
		constants.ErrCodeInvalidDateRange,
		constants.ErrCodeAvailabilityOverlap,
		constants.ErrCodeInvalidStatus,
		constants.ErrCodePermissionDenied,
		constants.ErrCodeUnauthenticated,
		constants.ErrCodeNotFound,
		constants.ErrCodeConstraintViolation:
		return true
	}
	return false
}
