// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("shop_domain", validateShopDomain)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateShopDomain(fl validator.FieldLevel) bool {
	domain := fl.Field().String()

	// e.g. my-store.myshopify.com
	if len(domain) < 4 || len(domain) > 255 {
		return false
	}

	matched, _ := regexp.MatchString(`^[a-z0-9][a-z0-9-]*(\.[a-z0-9][a-z0-9-]*)+$`, strings.ToLower(domain))
	return matched
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
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "shop_domain":
		return "Shop domain must be a valid hostname"
	default:
		return e.Field() + " is invalid"
	}
}
