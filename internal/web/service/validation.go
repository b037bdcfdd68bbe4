package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a form field to its messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+strings.Join(v[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends msg to field.
func (v ValidationErrors) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// On returns the messages for field.
func (v ValidationErrors) On(field string) []string { return v[field] }

// Full renders "Field message" sentences in field order.
func (v ValidationErrors) Full() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		label := strings.ReplaceAll(f, "_", " ")
		label = strings.ToUpper(label[:1]) + label[1:]
		for _, msg := range v[f] {
			out = append(out, label+" "+msg)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates s and converts failures to ValidationErrors. It returns
// nil for a valid struct.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := ValidationErrors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "email":
		return "is invalid"
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	case "eqfield":
		return "doesn't match " + strings.ReplaceAll(fe.Param(), "_", " ")
	}
	return "is invalid"
}

// Is lets errors.Is(err, ErrEmailTaken) match a uniqueness failure on email.
func (v ValidationErrors) Is(target error) bool {
	if target != ErrEmailTaken {
		return false
	}
	for _, msg := range v["email"] {
		if msg == msgEmailTaken {
			return true
		}
	}
	return false
}
