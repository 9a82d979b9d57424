// Package validator provides struct validation utilities with custom
// validators for the authorization domain.
package validator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/clearcrm/authz/pkg/domain/permission"
)

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// New creates a new Validator with custom validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("entity_type", validateEntityType)
	_ = v.RegisterValidation("perm_scope", validateScope)
	_ = v.RegisterValidation("permission_name", validatePermissionName)

	return &Validator{validate: v}
}

// Validate validates a struct and returns ValidationErrors if validation fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		result = append(result, ValidationError{
			Field:   toSnakeCase(e.Field()),
			Message: formatErrorMessage(e),
		})
	}

	return result
}

func validateEntityType(fl validator.FieldLevel) bool {
	_, ok := permission.ModuleForEntity(fl.Field().String())
	return ok
}

func validateScope(fl validator.FieldLevel) bool {
	return permission.Scope(fl.Field().String()).IsValid()
}

func validatePermissionName(fl validator.FieldLevel) bool {
	_, ok := permission.Parse(fl.Field().String())
	return ok
}

func formatErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "uuid":
		return "must be a valid UUID"
	case "entity_type":
		return fmt.Sprintf("must be one of: %s", strings.Join(permission.EntityTypes(), ", "))
	case "perm_scope":
		return fmt.Sprintf("must be one of: %s", formatScopes())
	case "permission_name":
		return "must be a known permission name"
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}

func formatScopes() string {
	scopes := permission.ScopePrecedence
	strs := make([]string, len(scopes))
	for i, s := range scopes {
		strs[i] = string(s)
	}
	return strings.Join(strs, ", ")
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
