package constants

// Error codes shared by the repositories, services and HTTP layer
const (
	// validation, raised before any store call
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeInvalidDateRange    = "INVALID_DATE_RANGE"
	ErrCodeAvailabilityOverlap = "AVAILABILITY_OVERLAP"
	ErrCodeInvalidStatus       = "INVALID_STATUS"

	// backend rejection
	ErrCodePermissionDenied    = "PERMISSION_DENIED"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"

	// transport / store failure
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeStorageFailed      = "STORAGE_FAILED"
)

var ErrorMessages = map[string]string{
	ErrCodeValidation:          "The request is invalid",
	ErrCodeInvalidDateRange:    "Start date must be on or before end date",
	ErrCodeAvailabilityOverlap: "This period overlaps an existing availability",
	ErrCodeInvalidStatus:       "Unknown status value",
	ErrCodePermissionDenied:    "You are not allowed to perform this action",
	ErrCodeUnauthenticated:     "Authentication required",
	ErrCodeNotFound:            "The requested record does not exist",
	ErrCodeConstraintViolation: "The change conflicts with existing data",
	ErrCodeBackendUnavailable:  "The service is temporarily unavailable",
	ErrCodeStorageFailed:       "The file could not be stored",
}

// GetErrorMessage returns the user-facing message for a code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred"
}
