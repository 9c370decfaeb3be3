// Package validator decodes JSON request bodies and checks them against
// go-playground/validator struct tags, reporting failures per JSON field.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/todoreminder/pkg/httpx"
)

// rules are the project-specific tags registered on top of the built-ins.
var rules = map[string]validator.Func{
	// notblank rejects strings that are empty after trimming whitespace.
	"notblank": func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	},
	// printable rejects control characters, which never render in a
	// notification banner.
	"printable": func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
	},
	// future requires a time.Time strictly after the moment of validation.
	"future": func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(time.Now())
	},
}

// messages maps a tag to its field message. A %s verb receives the tag
// parameter.
var messages = map[string]string{
	"required":   "This field is required",
	"notblank":   "Must not be blank",
	"printable":  "Must not contain control characters",
	"future":     "Must be in the future",
	"uuid":       "Must be a valid UUID",
	"email":      "Must be a valid email address",
	"min":        "Minimum length is %s",
	"max":        "Maximum length is %s",
	"gte":        "Must be greater than or equal to %s",
	"lte":        "Must be less than or equal to %s",
	"startswith": "Must start with %q",
	"oneof":      "Must be one of: %s",
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validator: register %s: %v", tag, err))
		}
	}
	return v
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a map of
// JSON field name to message. Any other error yields an empty map.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = fieldMessage(e)
	}
	return errs
}

func fieldMessage(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
	if strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, e.Param())
	}
	return msg
}

// ValidateRequest decodes the JSON body into T and validates it. On failure
// it writes 400 (malformed JSON), 413 (body over the router limit) or 422
// (field errors) and returns false.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed",
			"fields": FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}
