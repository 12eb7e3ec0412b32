// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailShape = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneShape = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// NewValidator returns a validator that reports json field names and knows
// the emailshape and phone tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	//nolint:errcheck // tags are static and valid
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsEmailShaped(fl.Field().String())
	})

	//nolint:errcheck // tags are static and valid
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhoneShaped(fl.Field().String())
	})

	return v
}

func IsEmailShaped(email string) bool {
	return emailShape.MatchString(email)
}

// IsPhoneShaped ignores spaces and dashes.
func IsPhoneShaped(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return phoneShape.MatchString(cleaned)
}

// ValidationMessages turns validator errors into one message per violated
// rule. messages is keyed by "field.tag"; missing keys fall back to a generic
// description.
func ValidationMessages(err error, messages map[string]string) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))

	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		msg, ok := messages[key]
		if !ok {
			msg, ok = messages[fe.Field()]
		}
		if !ok {
			msg = describe(fe)
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}

	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
