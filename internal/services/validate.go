package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
)

var validate = newValidator()

// looseEmail accepts anything shaped like local@domain.tld.
var looseEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	return v
}

// validateInput runs struct tags and turns the first failure into a 400 whose
// message names the offending JSON field.
func validateInput(code string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierr.BadRequest(code, err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apierr.BadRequest(code, fe.Field()+" is required")
	case "email", "looseemail":
		return apierr.BadRequest(code, "Valid email required")
	default:
		return apierr.BadRequest(code, fe.Field()+" is invalid")
	}
}
