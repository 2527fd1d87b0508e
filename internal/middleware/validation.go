package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/ehr-api/internal/model"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

var validationMessages = map[string]string{
	"required":  "This field is required.",
	"email":     "Enter a valid email address.",
	"gender":    "Must be one of M, F.",
	"bloodtype": "Must be one of " + strings.Join(model.BloodTypes, ", ") + ".",
}

// RegisterValidators installs the custom tags used by request models on
// gin's validator and reports fields by their JSON names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	custom := map[string]validator.Func{
		"gender":    validateGender,
		"bloodtype": validateBloodType,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

func validateGender(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.GenderMale, model.GenderFemale:
		return true
	}
	return false
}

func validateBloodType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, bt := range model.BloodTypes {
		if value == bt {
			return true
		}
	}
	return false
}

// FieldErrors converts validator failures to API field errors
func FieldErrors(errs validator.ValidationErrors) []apperrors.FieldError {
	out := make([]apperrors.FieldError, 0, len(errs))
	for _, e := range errs {
		msg, ok := validationMessages[e.Tag()]
		if !ok {
			switch e.Tag() {
			case "max":
				msg = fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
			case "min":
				msg = fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
			default:
				msg = fmt.Sprintf("Failed on the %s rule.", e.Tag())
			}
		}
		out = append(out, apperrors.Field(e.Field(), msg))
	}
	return out
}
