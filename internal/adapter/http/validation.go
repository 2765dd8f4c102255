package http

import (
	"reflect"
	"strings"

	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/pkg/id"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error       string       `json:"error"`
	Kind        string       `json:"kind,omitempty"`
	Details     []FieldError `json:"details,omitempty"`
	StoragePath string       `json:"storage_path,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// operator id = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.IsID32(fl.Field().String())
	})
	// empty means NOT_APPLICABLE
	_ = v.RegisterValidation("podreq", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || field.PodRequirement(s).Valid()
	})
	// at least one [a-z0-9] survives slugging
	_ = v.RegisterValidation("slugable", func(fl validator.FieldLevel) bool {
		return field.Slug(fl.Field().String()) != ""
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "podreq":
			out = append(out, FieldError{Field: field, Message: "must be NOT_APPLICABLE or MANDATORY"})
		case "slugable":
			out = append(out, FieldError{Field: field, Message: "must contain at least one letter or digit"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must have at least " + e.Param() + " entries"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must have at most " + e.Param() + " entries"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
