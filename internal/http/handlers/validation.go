package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators installs the custom rules and JSON field naming on gin's
// validator engine. It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				x, _ := d.Float64()
				return x
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("letterdigit", letterDigit)
	})
}

// letterDigit requires at least one letter and one digit.
func letterDigit(fl validator.FieldLevel) bool {
	var letter, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// bindMessage turns a binding error into a client-facing sentence. Only the
// first failed rule is reported.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid JSON body"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "email":
		return "must be a valid email address"
	case "gte", "gt":
		return field + " must be greater than 0"
	case "letterdigit":
		return field + " must contain at least one letter and one number"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
