package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator devuelve la instancia compartida, que reporta los campos con su nombre JSON.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
			}
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate valida un DTO y devuelve un único error legible con todos los campos inválidos.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", e.Field())
	case "uuid":
		return fmt.Sprintf("%s debe ser un UUID", e.Field())
	case "min":
		return fmt.Sprintf("%s debe ser al menos %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s debe ser como máximo %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s no es válido (%s)", e.Field(), e.Tag())
}
