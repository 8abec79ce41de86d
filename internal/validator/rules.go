package validator

import (
	"log"
	"math"
	"reflect"
	"strings"

	"jobboard_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("user_type", validateUserType)
	mustRegister("job_type", validateJobType)
	mustRegister("application_status", validateApplicationStatus)
	mustRegister("money", validateMoney)
	mustRegister("notblank", validateNotBlank)
}

// Empty values pass every rule below; `required` handles them.

func validateUserType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserType(value).IsValid()
}

func validateJobType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.JobType(value).IsValid()
}

func validateApplicationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ApplicationStatus(value).IsValid()
}

// validateNotBlank rejects strings made only of whitespace, including "".
func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// validateMoney matches a numeric(10,2) column: at most 8 integer digits
// and 2 decimal places.
func validateMoney(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float64 && field.Kind() != reflect.Float32 {
		return false
	}
	value := field.Float()
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	if math.Abs(value) >= 1e8 {
		return false
	}
	cents := value * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}
