// Package validation wires custom rules into gin's validator and turns bind
// errors into field-level messages.
package validation

import (
	"civicdesk/backend/internal/config"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a failed validation, rendered as the 400 response body.
type Error struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// New builds a single-field validation error.
func New(field, message string) *Error {
	return &Error{Message: "Validation failed", Errors: []FieldError{{Field: field, Message: message}}}
}

// Text is a request string validated and stored with surrounding whitespace
// removed, so length rules hold for what the models persist.
type Text string

// String returns the trimmed value.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Strings returns the trimmed values of ts.
func Strings(ts []Text) []string {
	if ts == nil {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

// TextPtr returns a pointer to the trimmed value, or nil.
func TextPtr(t *Text) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

var setupOnce sync.Once

// Setup registers the custom rules on gin's default validator. Safe to call repeatedly.
func Setup() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register adds the JSON tag-name function and the custom rules to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		return strings.TrimSpace(f.String())
	}, Text(""))
	_ = v.RegisterValidation("password", validPassword)
	_ = v.RegisterValidation("coordinates", validCoordinates)
	_ = v.RegisterValidation("complaint_status", oneOf(config.Statuses))
	_ = v.RegisterValidation("priority", oneOf(config.Priorities))
	_ = v.RegisterValidation("role", oneOf(config.Roles))
}

func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

func validPassword(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) >= config.MinPasswordLength
}

// validCoordinates accepts a [longitude, latitude] pair within range.
func validCoordinates(fl validator.FieldLevel) bool {
	coords, ok := fl.Field().Interface().([]float64)
	if !ok || len(coords) != 2 {
		return false
	}
	lng, lat := coords[0], coords[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// Translate converts an error from gin's ShouldBind* into a *Error.
// Errors it does not recognize are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &Error{Message: "Validation failed", Errors: make([]FieldError, 0, len(verrs))}
		for _, fe := range verrs {
			out.Errors = append(out.Errors, FieldError{Field: fieldPath(fe), Message: message(fe)})
		}
		return out
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return New("body", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return New("body", "malformed JSON")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return New(field, fmt.Sprintf("must be of type %s", typeErr.Type))
	}
	return err
}

// fieldPath drops the top-level struct name: "createRequest.location.coordinates" -> "location.coordinates".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must be %q", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "uuid", "uuid4":
		return "must be a valid id"
	case "coordinates":
		return "must be [longitude, latitude] with longitude in [-180, 180] and latitude in [-90, 90]"
	case "password":
		return fmt.Sprintf("must be at least %d characters long", config.MinPasswordLength)
	case "complaint_status":
		return "must be one of: " + strings.Join(config.Statuses, ", ")
	case "priority":
		return "must be one of: " + strings.Join(config.Priorities, ", ")
	case "role":
		return "must be one of: " + strings.Join(config.Roles, ", ")
	case "e164", "phone":
		return "must be a valid phone number"
	}
	return fmt.Sprintf("failed the %q rule", fe.Tag())
}
