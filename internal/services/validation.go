package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"homznspace/backend/internal/apperr"
)

// newValidator reports field errors by their JSON names, matching what clients send.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError converts validator output into a VALIDATION_ERROR naming the offending fields.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation(err.Error())
	}
	fields := make([]string, 0, len(fieldErrs))
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	msg := "invalid value for " + strings.Join(fields, ", ")
	if len(missing) == len(fields) {
		msg = "missing required field: " + strings.Join(missing, ", ")
	}
	return apperr.Validation(msg, fields...)
}
