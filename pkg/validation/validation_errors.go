package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors converts validator errors into messages keyed by request field name.
// Errors that are not validation errors are returned under "non_field_errors".
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out["non_field_errors"] = []string{err.Error()}
		return out
	}

	for _, e := range validationErrors {
		field := fieldKey(e.Field())
		out[field] = append(out[field], formatSingleError(e))
	}
	return out
}

// fieldKey strips dive indexes: "skills[2]" -> "skills".
func fieldKey(field string) string {
	if i := strings.IndexByte(field, '['); i > 0 {
		return field[:i]
	}
	return field
}

func formatSingleError(e validator.FieldError) string {
	param := e.Param()

	switch e.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this field has at least %s characters.", param)
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", param)
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", param)
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(param, " ", ", "))
	case "valid_username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "valid_name":
		return "Only letters, digits, spaces and common punctuation are allowed."
	case "no_emoji":
		return "Emoji and special symbols are not allowed."
	default:
		return fmt.Sprintf("Invalid value (%s).", e.Tag())
	}
}
