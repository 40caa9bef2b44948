package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"aneka-keramik/internal/apis/dtos"

	"github.com/go-playground/validator/v10"
)

// bindErrorItems turns binding failures into per-field messages; anything that is not
// a validator error (bad JSON, wrong types) becomes a single body-level item.
func bindErrorItems(err error) []dtos.ValidationErrorItem {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []dtos.ValidationErrorItem{{Field: "body", Message: err.Error()}}
	}

	items := make([]dtos.ValidationErrorItem, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := lowerFirst(fe.Field())
		items = append(items, dtos.ValidationErrorItem{Field: field, Message: fieldMessage(field, fe)})
	}
	return items
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return strings.TrimSpace(string(r))
}
