package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"view-router/internal/common/errors"
	"view-router/internal/routing"
)

var typeIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// CentralizedValidator provides unified validation using go-playground/validator
type CentralizedValidator struct {
	validator *validator.Validate
}

// ValidationResult contains validation results with structured errors
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// NewCentralizedValidator creates a new centralized validator instance
func NewCentralizedValidator() *CentralizedValidator {
	v := validator.New()

	registerNavigationValidators(v)

	// Type identifiers validate as their type name
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if id, ok := field.Interface().(routing.TypeID); ok {
			return id.String()
		}
		return nil
	}, routing.TypeID{})

	// Report yaml, then json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return &CentralizedValidator{
		validator: v,
	}
}

// ValidateStruct validates a struct using struct tags
func (cv *CentralizedValidator) ValidateStruct(s interface{}) error {
	if err := cv.validator.Struct(s); err != nil {
		return cv.formatValidationErrors(err)
	}
	return nil
}

// ValidateVar validates a single variable with validation rules
func (cv *CentralizedValidator) ValidateVar(field interface{}, tag string) error {
	if err := cv.validator.Var(field, tag); err != nil {
		return cv.formatValidationErrors(err)
	}
	return nil
}

// ValidateStructResult validates a struct and returns detailed results
func (cv *CentralizedValidator) ValidateStructResult(s interface{}) *ValidationResult {
	err := cv.validator.Struct(s)
	if err == nil {
		return &ValidationResult{Valid: true, Errors: []ValidationError{}}
	}

	return &ValidationResult{
		Valid:  false,
		Errors: cv.extractValidationErrors(err),
	}
}

// FluentValidator accumulates errors from chained checks
type FluentValidator struct {
	centralizedValidator *CentralizedValidator
	errors               []ValidationError
	prefix               string
}

// Validator is the fluent validator used by configuration checks
type Validator = FluentValidator

// NewValidator creates a fluent validator
func NewValidator() *Validator {
	return &FluentValidator{
		centralizedValidator: globalValidator,
		errors:               make([]ValidationError, 0),
	}
}

// NewValidatorWithPrefix creates a fluent validator with an error prefix
func NewValidatorWithPrefix(prefix string) *Validator {
	v := NewValidator()
	v.prefix = prefix
	return v
}

// RequireString validates that a string is not empty (trimmed)
func (fv *FluentValidator) RequireString(value, name string) *FluentValidator {
	if strings.TrimSpace(value) == "" {
		fv.addError(name, "required", value, fmt.Sprintf("%s is required", name))
	}
	return fv
}

// RequirePositive validates that an integer is positive
func (fv *FluentValidator) RequirePositive(value int, name string) *FluentValidator {
	if err := fv.centralizedValidator.ValidateVar(value, "min=1"); err != nil {
		fv.addError(name, "min", fmt.Sprintf("%d", value), fmt.Sprintf("%s must be positive", name))
	}
	return fv
}

// RequireNonNegative validates that an integer is non-negative
func (fv *FluentValidator) RequireNonNegative(value int, name string) *FluentValidator {
	if err := fv.centralizedValidator.ValidateVar(value, "min=0"); err != nil {
		fv.addError(name, "min", fmt.Sprintf("%d", value), fmt.Sprintf("%s must be non-negative", name))
	}
	return fv
}

// RequireRange validates that a value is within a range
func (fv *FluentValidator) RequireRange(value, min, max int, name string) *FluentValidator {
	tag := fmt.Sprintf("min=%d,max=%d", min, max)
	if err := fv.centralizedValidator.ValidateVar(value, tag); err != nil {
		fv.addError(name, "range", fmt.Sprintf("%d", value), fmt.Sprintf("%s must be between %d and %d", name, min, max))
	}
	return fv
}

// RequireOneOf validates that a value is one of the allowed values
func (fv *FluentValidator) RequireOneOf(value string, allowed []string, name string) *FluentValidator {
	tag := fmt.Sprintf("required,oneof=%s", strings.Join(allowed, " "))
	if err := fv.centralizedValidator.ValidateVar(value, tag); err != nil {
		fv.addError(name, "oneof", value, fmt.Sprintf("%s must be one of: %s", name, strings.Join(allowed, ", ")))
	}
	return fv
}

// RequireRouteToken validates that a string is a well-formed route token
func (fv *FluentValidator) RequireRouteToken(value, name string) *FluentValidator {
	if err := fv.centralizedValidator.ValidateVar(value, "required,route_token"); err != nil {
		fv.addError(name, "route_token", value, fmt.Sprintf("%s must be a route token like /shell/route", name))
	}
	return fv
}

// Validate runs a custom validation function
func (fv *FluentValidator) Validate(fn func() error) *FluentValidator {
	if err := fn(); err != nil {
		fv.addError("custom", "custom", "", err.Error())
	}
	return fv
}

// ValidateIf runs a validation function if a condition is true
func (fv *FluentValidator) ValidateIf(condition bool, fn func() error) *FluentValidator {
	if condition {
		return fv.Validate(fn)
	}
	return fv
}

// HasErrors returns true if there are validation errors
func (fv *FluentValidator) HasErrors() bool {
	return len(fv.errors) > 0
}

// Errors returns all validation errors as standard errors
func (fv *FluentValidator) Errors() []error {
	result := make([]error, len(fv.errors))
	for i, e := range fv.errors {
		result[i] = errors.ValidationError(e.Message)
	}
	return result
}

// Error returns the validation error or nil if there are no errors
func (fv *FluentValidator) Error() error {
	if !fv.HasErrors() {
		return nil
	}

	if len(fv.errors) == 1 {
		return errors.ValidationError(fv.errors[0].Message)
	}

	messages := make([]string, len(fv.errors))
	for i, e := range fv.errors {
		messages[i] = e.Message
	}

	return errors.ValidationError(fmt.Sprintf("validation failed: %s", strings.Join(messages, "; ")))
}

// Clear clears all validation errors
func (fv *FluentValidator) Clear() *FluentValidator {
	fv.errors = fv.errors[:0]
	return fv
}

// Merge merges errors from another fluent validator
func (fv *FluentValidator) Merge(other *FluentValidator) *FluentValidator {
	if other != nil && other.HasErrors() {
		fv.errors = append(fv.errors, other.errors...)
	}
	return fv
}

func (fv *FluentValidator) addError(field, tag, value, message string) {
	if fv.prefix != "" {
		message = fmt.Sprintf("%s: %s", fv.prefix, message)
		field = fmt.Sprintf("%s.%s", fv.prefix, field)
	}

	fv.errors = append(fv.errors, ValidationError{
		Field:   field,
		Tag:     tag,
		Value:   value,
		Message: message,
	})
}

// formatValidationErrors converts go-playground/validator errors to internal errors
func (cv *CentralizedValidator) formatValidationErrors(err error) error {
	validationErrors := cv.extractValidationErrors(err)
	if len(validationErrors) == 1 {
		return errors.ValidationError(validationErrors[0].Message)
	}

	messages := make([]string, len(validationErrors))
	for i, e := range validationErrors {
		messages[i] = e.Message
	}

	return errors.ValidationError(fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))).
		WithContext("errors", len(validationErrors))
}

func (cv *CentralizedValidator) extractValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldError.Namespace(),
				Tag:     fieldError.Tag(),
				Value:   fmt.Sprintf("%v", fieldError.Value()),
				Message: cv.formatFieldError(fieldError),
				Param:   fieldError.Param(),
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "unknown",
			Tag:     "error",
			Message: err.Error(),
		})
	}

	return validationErrors
}

// formatFieldError formats go-playground/validator field errors into readable messages
func (cv *CentralizedValidator) formatFieldError(err validator.FieldError) string {
	field := err.Namespace()
	if field == "" {
		field = err.Field()
	}

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s", field, err.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, err.Param())
	case "route_pattern":
		return fmt.Sprintf("field '%s' must be a route pattern like /users/:id", field)
	case "route_token":
		return fmt.Sprintf("field '%s' must be a route token like /shell/route", field)
	case "type_id":
		return fmt.Sprintf("field '%s' must be a dotted type name like app.users.UserController", field)
	case "duration":
		return fmt.Sprintf("field '%s' must be a valid duration", field)
	default:
		return fmt.Sprintf("field '%s' failed validation: %s", field, err.Tag())
	}
}

// registerNavigationValidators registers the route and type name checks
func registerNavigationValidators(v *validator.Validate) {
	v.RegisterValidation("route_pattern", func(fl validator.FieldLevel) bool {
		return routing.ValidPattern(fl.Field().String())
	})

	v.RegisterValidation("route_token", func(fl validator.FieldLevel) bool {
		_, err := routing.NewParser(routing.DialectSlash).Parse(fl.Field().String())
		return err == nil
	})

	v.RegisterValidation("type_id", func(fl validator.FieldLevel) bool {
		return typeIDPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
}

// Global validator instance for convenience
var globalValidator = NewCentralizedValidator()

// ValidateStruct validates a struct using the global validator instance
func ValidateStruct(s interface{}) error {
	return globalValidator.ValidateStruct(s)
}

// ValidateVar validates a variable using the global validator instance
func ValidateVar(field interface{}, tag string) error {
	return globalValidator.ValidateVar(field, tag)
}

// ValidateStructResult validates a struct and returns detailed results using the global validator
func ValidateStructResult(s interface{}) *ValidationResult {
	return globalValidator.ValidateStructResult(s)
}
