package book

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinYear is the earliest publication year accepted on create.
const MinYear = 1000

// IsValidYear reports whether y lies in [MinYear, current calendar year].
func IsValidYear(y int) bool {
	return isValidYearAt(y, time.Now())
}

func isValidYearAt(y int, now time.Time) bool {
	return y >= MinYear && y <= now.Year()
}

// IsValidISBN reports whether s is 13 decimal digits once hyphens are
// removed. The check digit is not verified.
func IsValidISBN(s string) bool {
	cleaned := strings.ReplaceAll(s, "-", "")
	if len(cleaned) != 13 {
		return false
	}
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] < '0' || cleaned[i] > '9' {
			return false
		}
	}
	return true
}

// Validator checks AddBook inputs. The clock is read on every call.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator builds a Validator using now as its clock. A nil now means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(), now: now}

	v.validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})
	_ = v.validate.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		return isValidYearAt(int(fl.Field().Int()), v.now())
	})
	_ = v.validate.RegisterValidation("isbn13", func(fl validator.FieldLevel) bool {
		return IsValidISBN(fl.Field().String())
	})
	return v
}

// Validate returns a *ValidationError listing every failed field, or nil.
func (v *Validator) Validate(in AddBook) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: v.message(fe),
		})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "pubyear":
		return fmt.Sprintf("%s must be between %d and %d", fe.Field(), MinYear, v.now().Year())
	case "isbn13":
		return fmt.Sprintf("%s must contain exactly 13 digits (hyphens allowed)", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
