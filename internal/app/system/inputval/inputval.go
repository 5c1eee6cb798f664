// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, reported with the field's JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the field errors of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "" when there is none.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("requesttype", func(fl validator.FieldLevel) bool {
			return IsValidRequestType(fl.Field().String())
		})
		_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
			return IsValidUrgency(fl.Field().String())
		})
		_ = v.RegisterValidation("helpstatus", func(fl validator.FieldLevel) bool {
			return models.HelpStatus(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// Validate checks v against its `validate` struct tags. Messages use the
// `label` tag when present, otherwise the field's JSON name.
//
//	type input struct {
//	    Title string `json:"title" validate:"required,max=200" label:"Title"`
//	}
func Validate(v any) Result {
	err := engine().Struct(v)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		label := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Message: message(label, fe),
		})
	}
	return out
}

func message(label string, fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		if isText {
			return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", label, fe.Param())
	case "min", "gte":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "requesttype", "urgency", "helpstatus", "oneof":
		return fmt.Sprintf("%s is invalid", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidRequestType reports whether s is a known request type.
func IsValidRequestType(s string) bool { return contains(models.RequestTypes, s) }

// IsValidUrgency reports whether s is a known urgency level.
func IsValidUrgency(s string) bool { return contains(models.UrgencyLevels, s) }

// IsValidFocusArea reports whether s is a known NGO focus area.
func IsValidFocusArea(s string) bool { return contains(models.FocusAreas, s) }
