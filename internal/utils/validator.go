// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/barter-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("category", validateCategory)
	validate.RegisterValidation("condition", validateCondition)
	validate.RegisterValidation("listing_type", validateListingType)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasLetter && hasNumber
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

func validateCondition(fl validator.FieldLevel) bool {
	return models.Condition(fl.Field().String()).Valid()
}

func validateListingType(fl validator.FieldLevel) bool {
	return models.ListingType(fl.Field().String()).Valid()
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
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
	case "eq":
		return e.Field() + " must be " + e.Param()
	case "strong_password":
		return "Password must be at least 8 characters with a letter and a number"
	case "category":
		return "Category must be one of Electronics, Stationery, Books, Clothing, Home, Tools, Other"
	case "condition":
		return "Condition must be one of Unpacked, Excellent, Good, Minor Defects, Bad, Scrap"
	case "listing_type":
		return "Type must be Barter or Giveaway"
	default:
		return e.Field() + " is invalid"
	}
}
