// Package validation checks settings against the constraints declared in
// their struct tags, using go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

// Ensure SettingsValidator implements the interface.
var _ driven.SettingsValidator = (*SettingsValidator)(nil)

// SettingsValidator validates settings structs. Error messages name fields by
// their configuration key.
type SettingsValidator struct {
	validate *validator.Validate
}

// NewSettingsValidator creates a validator with the custom rules registered.
func NewSettingsValidator() *SettingsValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if key := fld.Tag.Get("config"); key != "" {
			return key
		}
		return fld.Name
	})

	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(fmt.Sprintf("registering finite rule: %v", err))
	}

	return &SettingsValidator{validate: v}
}

// ValidateRouting checks routing settings.
func (s *SettingsValidator) ValidateRouting(settings *domain.RoutingSettings) error {
	return s.check(settings)
}

// ValidateStorage checks storage settings.
func (s *SettingsValidator) ValidateStorage(settings *domain.StorageSettings) error {
	return s.check(settings)
}

func (s *SettingsValidator) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(v, fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// formatFieldError renders one failed rule.
func formatFieldError(v any, e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		parts := strings.Fields(e.Param())
		if len(parts) == 2 {
			return fmt.Sprintf("%s is required when %s is %s", field, configKey(v, parts[0]), parts[1])
		}
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, configKey(v, e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// configKey maps a Go field name of v's struct type to its config tag.
func configKey(v any, fieldName string) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(fieldName); ok {
		if key := f.Tag.Get("config"); key != "" {
			return key
		}
	}
	return fieldName
}

// isFinite rejects NaN and infinities on float fields.
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	default:
		return true
	}
}
