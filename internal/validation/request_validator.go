package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
)

// RequestValidator validates API request structs using struct tags.
// Field names in messages are taken from json tags.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator with the custom tags used by the API contracts.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("xlsxfile", isWorkbookFilename)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}
}

// ValidateStruct validates s and returns an *apierrors.APIError listing every failed field.
func (rv *RequestValidator) ValidateStruct(s any) error {
	return toAPIError(rv.validate.Struct(s))
}

// ValidateStructExcept is ValidateStruct skipping the named top-level struct fields.
func (rv *RequestValidator) ValidateStructExcept(s any, fields ...string) error {
	return toAPIError(rv.validate.StructExcept(s, fields...))
}

func toAPIError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	details := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(details)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, jsonName(param))
	case "xlsxfile":
		return "Invalid file type. Please upload an .xlsx file."
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// jsonName converts a Go field name like DateColumn to date_column.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isWorkbookFilename validates an uploaded filename: a workbook extension and no path components.
func isWorkbookFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return false
	}
	return IsWorkbookName(name) && !strings.HasPrefix(name, "~$")
}
