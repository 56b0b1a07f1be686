package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator that reports fields by their JSON names,
// so messages match what clients send.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate implements echo.Validator. Failures read like
// "username is required; password is required".
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}

	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
}
