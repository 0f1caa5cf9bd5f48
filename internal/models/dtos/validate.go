package dtos

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/constants"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// check runs the struct tags of s. A failed oneof is an INVALID_STATUS,
// every other failure is VALIDATION_FAILED naming the first bad field.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.New(constants.ErrCodeValidation, err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "oneof":
		return apperrors.Newf(constants.ErrCodeInvalidStatus, "unknown %s %v", fe.Field(), fe.Value())
	case "required", "notblank":
		return apperrors.Validation("%s is required", fe.Field())
	case "datetime":
		return apperrors.Validation("%s must be YYYY-MM-DD, got %v", fe.Field(), fe.Value())
	case "gt":
		return apperrors.Validation("%s must be positive", fe.Field())
	case "gte":
		return apperrors.Validation("%s cannot be negative", fe.Field())
	case "max":
		return apperrors.Validation("%s is longer than %s", fe.Field(), fe.Param())
	}
	return apperrors.Validation("%s failed %s", fe.Field(), fe.Tag())
}

// ValidateRange checks an inclusive availability range and its status
func ValidateRange(start, end string, status constants.AvailabilityStatus) error {
	if err := check(AvailabilityInput{StartDate: start, EndDate: end, Status: status}); err != nil {
		return err
	}
	if start > end {
		return apperrors.New(constants.ErrCodeInvalidDateRange, nil)
	}
	return nil
}

func (in *AvailabilityInput) Validate() error {
	if in.Status == "" {
		in.Status = constants.AvailabilityAvailable
	}
	return ValidateRange(in.StartDate, in.EndDate, in.Status)
}

func (in *MissionInput) Validate() error {
	if in.Status == "" {
		in.Status = constants.MissionPlanned
	}
	return check(in)
}

func (p MissionPatch) Validate() error { return check(p) }

func (in FlightInput) Validate() error { return check(in) }

func (p FlightPatch) Validate() error { return check(p) }

func (in TrainingInput) Validate() error { return check(in) }

func (p TrainingPatch) Validate() error { return check(p) }

func (in CertificationInput) Validate() error {
	if err := check(in); err != nil {
		return err
	}
	if in.ExpiresAt != nil && *in.ExpiresAt < in.CompletedAt {
		return apperrors.Validation("expires_at must be on or after completed_at")
	}
	return nil
}

func (in *GuidelineInput) Validate() error {
	if in.Category == "" {
		in.Category = constants.CategoryGeneral
	}
	if in.Priority == "" {
		in.Priority = constants.PriorityMedium
	}
	return check(in)
}

func (p GuidelinePatch) Validate() error { return check(p) }
