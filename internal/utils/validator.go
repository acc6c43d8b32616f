// internal/utils/validator.go
package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("positive_price", validatePositivePrice)
	validate.RegisterCustomTypeFunc(decimalToFloat, decimal.Decimal{})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// decimalToFloat lets numeric tags (min, max, gt) apply to decimal fields.
func decimalToFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validatePositivePrice(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case float64:
		return v > 0
	case decimal.Decimal:
		return v.IsPositive()
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "positive_price":
		return e.Field() + " must be greater than zero"
	default:
		return e.Field() + " is invalid"
	}
}
