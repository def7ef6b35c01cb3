package dto

import (
	"errors"
	"reflect"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and knows the "username" rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return isUsername(fl.Field().String())
	})
	return v
}

func isUsername(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// Validate runs v over the DTO and turns rule failures into a ValidationError.
func Validate(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return customErrors.NewInvalidArgument(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return &customErrors.ValidationError{Fields: fields}
}
