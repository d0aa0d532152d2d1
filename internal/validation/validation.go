// Package validation wraps go-playground/validator struct-tag validation
// and converts its failures into the AppError shape handlers know how to
// serialize.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/frahmantamala/factoryshift/internal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates tagged fields and flattens failures into a single
// validation AppError.
func Struct(s interface{}) *internal.AppError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	fieldErrors := make([]internal.ValidationError, 0, len(invalid))
	for _, fe := range invalid {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: message(fe),
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}

	appErr := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed)
	return appErr.WithDetails(internal.ValidationErrors{Errors: fieldErrors})
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
