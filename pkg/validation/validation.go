package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	dErrors "consentd/pkg/domain-errors"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain error.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		field, msg := errorDetail(err)
		return dErrors.NewField(dErrors.CodeValidation, field, msg)
	}
	return nil
}

// errorDetail converts a validator error into the offending field and a
// human-readable message.
func errorDetail(err error) (string, string) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "", "invalid request body"
	}

	fe := validationErrs[0]
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required", "notblank":
		return field, fmt.Sprintf("%s: this field is required", field)
	case "max":
		return field, fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	default:
		return field, fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
