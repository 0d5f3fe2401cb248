// Package validation holds the shared input validator and its custom rules.
package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"webshop/internal/domain/entity"
	"webshop/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the custom card and password
// tags registered. Field names in errors are the json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate.RegisterValidation("luhn", func(fl validator.FieldLevel) bool {
			return entity.LuhnValid(fl.Field().String())
		})
		validate.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
			return entity.ExpiryValid(fl.Field().String())
		})
		validate.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
			return entity.CVVValid(fl.Field().String())
		})
		validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return PasswordValid(fl.Field().String())
		})
	})
	return validate
}

// Struct runs the shared validator and reports the first failing
// field as VALIDATION_FAILED.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.ValidationFailed(LowerFirst(fe.Field()), Message(fe))
	}
	return errors.ValidationFailed("", "Invalid input data")
}

// Var validates a single value against tag, naming field in the error.
func Var(field string, value interface{}, tag string) error {
	err := Validator().Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		message := Message(fieldErrs[0])
		// Var errors carry no field name.
		return errors.ValidationFailed(field, field+strings.TrimPrefix(message, LowerFirst(fieldErrs[0].Field())))
	}
	return errors.ValidationFailed(field, field+" is invalid")
}

// Message renders a user-facing message for one failed rule.
func Message(fe validator.FieldError) string {
	field := LowerFirst(fe.Field())
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param
	case "max":
		return field + " must be at most " + param
	case "oneof":
		return field + " must be one of: " + param
	case "email":
		return field + " must be a valid email address"
	case "numeric":
		return field + " must contain digits only"
	case "luhn":
		return "card number is invalid"
	case "expiry":
		return field + " must be in MM/YY format"
	case "cvv":
		return field + " must be 3 or 4 digits"
	case "password":
		return "password must be at least 8 characters and contain a special character"
	default:
		return field + " is invalid"
	}
}

// PasswordValid requires at least 8 characters, one of them not a letter or digit.
func PasswordValid(password string) bool {
	if len([]rune(password)) < 8 {
		return false
	}
	for _, r := range password {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
