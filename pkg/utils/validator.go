package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailPattern is the address shape accepted on public forms
var EmailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// IsEmail reports whether s matches EmailPattern
func IsEmail(s string) bool {
	return EmailPattern.MatchString(s)
}

// NewValidator returns a struct validator that reports fields by their JSON
// name and knows the "contactemail" tag
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	return v
}

// FieldErrors flattens validator errors into field -> failed tag, keeping
// the first failure per field
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
