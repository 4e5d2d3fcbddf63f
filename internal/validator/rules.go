package validator

import (
	"log"
	"math"
	"reflect"

	"searchapp_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила валидации.
func registerCustomRules(v *validator.Validate) {
	// Правило, которое не удалось зарегистрировать - ошибка запуска
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// -----------------------------------------------------------------
	// Правила на основе statuses.go
	// -----------------------------------------------------------------
	mustRegister("is-search-status", validateSearchStatus)
	mustRegister("is-user-role", validateUserRole)

	// -----------------------------------------------------------------
	// Координаты
	// -----------------------------------------------------------------
	mustRegister("is-latitude", rangeRule(-90, 90))
	mustRegister("is-longitude", rangeRule(-180, 180))
}

func validateSearchStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые обрабатывает 'required'
	}
	return models.SearchStatus(value).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).IsValid()
}

// rangeRule проверяет float-поле на вхождение в [min, max]; NaN отклоняется
func rangeRule(min, max float64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
			return false
		}
		value := field.Float()
		if math.IsNaN(value) {
			return false
		}
		return value >= min && value <= max
	}
}
