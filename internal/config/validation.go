package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string // name as written in the settings file, e.g. "org"
	Message string
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("invalid settings (%d error(s)):\n", len(ve)))
	for i, e := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, e.Field, e.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their settings-file key rather than the Go name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("ini"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterStructValidation(validateProxyPort, Settings{})
}

// validateProxyPort checks the port only for modes that dial ProxyHost.
func validateProxyPort(sl validator.StructLevel) {
	s := sl.Current().Interface().(Settings)
	if !s.UsesProxyHost() {
		return
	}
	switch {
	case s.ProxyPort < 1:
		sl.ReportError(s.ProxyPort, "port", "ProxyPort", "min", "1")
	case s.ProxyPort > 65535:
		sl.ReportError(s.ProxyPort, "port", "ProxyPort", "max", "65535")
	}
}

// Validate checks that the settings are complete enough to talk to the management API.
func (s *Settings) Validate() error {
	c := *s
	c.ProxyMode = NormalizeProxyMode(c.ProxyMode)

	err := validate.Struct(&c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required (set it with 'apigee settings init', an APIGEE_* variable, or a flag)"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}
