package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response. Typed errors pick
// their status from the error code unless statusCode is given.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := StatusForError(err)
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	var appErr *apperrors.Error
	errCode := apperrors.CodeOf(err)
	if code >= http.StatusInternalServerError {
		// store details stay in the logs
		logging.Error("Request failed", "code", errCode, "error", msg)
		msg = constants.GetErrorMessage(constants.ErrCodeBackendUnavailable)
		if errCode == constants.ErrCodeStorageFailed {
			msg = constants.GetErrorMessage(errCode)
		}
	} else if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: GetResponseTime(initTime),
		Code:         errCode,
	}

	writeJSON(w, code, response)
}

// StatusForError maps an error code onto an HTTP status
func StatusForError(err error) int {
	switch apperrors.CodeOf(err) {
	case constants.ErrCodeValidation,
		constants.ErrCodeInvalidDateRange,
		constants.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case constants.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case constants.ErrCodePermissionDenied:
		return http.StatusForbidden
	case constants.ErrCodeNotFound:
		return http.StatusNotFound
	case constants.ErrCodeAvailabilityOverlap,
		constants.ErrCodeConstraintViolation:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
