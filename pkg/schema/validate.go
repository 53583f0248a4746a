package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue is one structural problem found in a schema.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError aggregates every structural issue of a schema.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: invalid"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "schema: invalid: " + strings.Join(parts, "; ")
}

const tagEndpointRequired = "endpoint_required"

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateButton, ButtonSpec{})
	return v
}

func validateButton(sl validator.StructLevel) {
	button, ok := sl.Current().Interface().(ButtonSpec)
	if !ok {
		return
	}
	if button.Behaviour() == ButtonCustom && strings.TrimSpace(button.Endpoint) == "" {
		sl.ReportError(button.Endpoint, "endpoint", "Endpoint", tagEndpointRequired, "")
	}
}

// Validate checks the structure of a decoded schema: page ids and field
// names are required, custom buttons need an endpoint, and length bounds are
// non-negative. Field-name uniqueness is not enforced here; Lint reports it.
func Validate(s *Schema) error {
	if s == nil {
		return errors.New("schema: nil schema")
	}
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("schema: validate: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Issues = append(out.Issues, Issue{
			Path:    strings.TrimPrefix(fe.Namespace(), "Schema."),
			Message: issueMessage(fe),
		})
	}
	return out
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case tagEndpointRequired:
		return "is required for custom buttons"
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
