package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	validate        = newValidator()
)

// BillingAddress feeds the processor's AVS check.
type BillingAddress struct {
	PostCode string `json:"post_code" validate:"omitempty,max=10"`
	Street   string `json:"street" validate:"omitempty,max=255"`
}

// PaymentRequest describes one purchase attempt. It is never persisted.
type PaymentRequest struct {
	PayerID     string          `json:"payer_id" validate:"required,max=64"`
	Credits     int             `json:"credits" validate:"gt=0"`
	Amount      int64           `json:"amount" validate:"gt=0"`
	Currency    string          `json:"currency" validate:"required,currency"`
	Description string          `json:"description" validate:"max=255"`
	ClientIP    string          `json:"client_ip" validate:"required,ip"`
	Card        Card            `json:"card"`
	Billing     *BillingAddress `json:"billing,omitempty"`
}

func (r PaymentRequest) Money() Money {
	return Money{Amount: r.Amount, Currency: r.Currency}
}

// Validate runs struct rules and the card checks. Card errors are returned
// as-is so callers can tell a bad number from a bad expiry.
func (r PaymentRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return normalizeValidationError(err)
	}
	return r.Card.Validate()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return currencyPattern.MatchString(value)
	}); err != nil {
		panic(err)
	}

	return v
}

func normalizeValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[jsonPath(fe)] = validationMessage(fe)
	}
	return NewInvalidRequestError(fields)
}

func jsonPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	if path == "" {
		return fe.Field()
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "ip":
		return "must be an IP address"
	case "currency":
		return "must be an upper-case 3-letter ISO-4217 code"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
