// Package validation wraps go-playground/validator with the storefront error taxonomy.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/storefront-labs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.IsSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return enums.OrderStatus(fl.Field().String()).IsValid()
	})
	return v
}

// Struct validates dest and returns a VALIDATION_ERROR carrying per-field messages.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// Field returns a VALIDATION_ERROR naming a single field.
func Field(field, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: message})
}

// Required trims value and fails when it is blank or longer than max runes.
func Required(field, value string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", Field(field, "is required")
	}
	if max > 0 && len([]rune(trimmed)) > max {
		return "", Field(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return trimmed, nil
}

// MaxPrice is the first value NUMERIC(8,2) cannot hold.
var MaxPrice = decimal.NewFromInt(1_000_000)

// Price enforces a non-negative amount with at most two fractional digits that fits
// NUMERIC(8,2).
func Price(field string, value decimal.Decimal) error {
	switch {
	case value.IsNegative():
		return Field(field, "must not be negative")
	case value.Exponent() < -2 && !value.Equal(value.Round(2)):
		return Field(field, "must have at most 2 decimal places")
	case value.GreaterThanOrEqual(MaxPrice):
		return Field(field, "must be less than 1000000")
	}
	return nil
}

// MaxQuantity caps a single cart or order line. The quantity tags on input
// structs repeat it as max=10000.
const MaxQuantity = 10_000

// Quantity accepts 1 through MaxQuantity.
func Quantity(field string, value int) error {
	switch {
	case value < 1:
		return Field(field, "must be at least 1")
	case value > MaxQuantity:
		return Field(field, fmt.Sprintf("must be at most %d", MaxQuantity))
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid uuid"
	case "slug":
		return "must be lowercase letters, digits and hyphens"
	case "order_status":
		return "must be a known order status"
	case "url":
		return "must be a valid url"
	}
	return "is invalid"
}
