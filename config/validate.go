package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is one rejected setting, named by its environment variable.
type ValidationError struct {
	Field   string // environment variable, e.g. "DEBUG_OUTPUT"
	Message string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("debug config validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("colorflag", validateColorFlag); err != nil {
		panic(err)
	}
	// report fields by the variable an operator sets
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("env")
		if name == "" {
			return fld.Name
		}
		return name
	})
}

func validateColorFlag(fl validator.FieldLevel) bool {
	_, set := ParseColors(fl.Field().String())
	return set
}

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "colorflag":
		return "must be yes/on/true/enabled, no/off/false/disabled or a number"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// Validate checks field values and the combinations the wiring depends on.
// The result, when not nil, is a ValidationErrors.
func (c *Config) Validate() error {
	var errs ValidationErrors
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			errs = append(errs, ValidationError{Field: e.Field(), Message: getValidationMessage(e)})
		}
	}
	if c.Output == OUTPUT_FILE && c.File.Path == "" {
		errs = append(errs, ValidationError{Field: "DEBUG_FILE", Message: "required when DEBUG_OUTPUT=file"})
	}
	if c.Watch && c.Store != STORE_FILE {
		errs = append(errs, ValidationError{Field: "DEBUG_WATCH", Message: "needs DEBUG_STORE=file"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
