// Package validation holds the shared request validator. Rules are declared
// as struct tags on the per-operation input types; Struct turns validator
// failures into an apperr.ValidationError keyed by JSON field paths.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
)

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

// phonePattern mirrors the UI rule: optional leading +, then 10-15 digits, spaces or hyphens.
var phonePattern = regexp.MustCompile(`^\+?[0-9\-\s]{10,15}$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	// isodate and optionalurl accept "" so optional pointer fields can be cleared
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := ParseDate(s)
		return err == nil
	})
	_ = validate.RegisterValidation("optionalurl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		u, err := url.ParseRequestURI(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	})
}

// RegisterStructValidation adds a cross-field rule for the given types.
// Call it from an init function only; the validator is not safe for
// concurrent registration.
func RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	validate.RegisterStructValidation(fn, types...)
}

// Struct validates s and returns nil, an *apperr.ValidationError, or the
// validator's own error when s is not a struct.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make([]apperr.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, apperr.Field(fieldPath(fe.Namespace()), message(fe)))
	}
	return apperr.Validation(fields...)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", s)
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url", "optionalurl":
		return "must be a valid URL"
	case "phone":
		return "must be a valid phone number (10-15 digits, may include +, spaces or hyphens)"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "datefrom":
		return fmt.Sprintf("must not be before %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
