package domain

import (
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// CardBrand is a display-only classification; it never drives authorization.
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandAmex       CardBrand = "amex"
	BrandDiscover   CardBrand = "discover"
	BrandUnknown    CardBrand = "unknown"
)

const (
	minPANLength = 13
	maxPANLength = 19
)

// Card holds raw card data for the duration of one initiation call.
// It must never be persisted; LogValue keeps PAN and CVV out of logs.
type Card struct {
	PAN         string `json:"pan" validate:"required"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=0"`
	CVV         string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	Holder      string `json:"holder" validate:"required,max=255"`
}

// LogValue implements slog.LogValuer.
func (c Card) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("pan", MaskPAN(c.PAN)),
		slog.String("brand", string(DetectBrand(c.PAN))),
	)
}

// Normalized returns the PAN with whitespace removed and a four digit expiry year.
func (c Card) Normalized() Card {
	c.PAN = stripSpaces(c.PAN)
	c.ExpiryYear = expandYear(c.ExpiryYear)
	return c
}

// Validate runs the number and expiry checks against the current time.
func (c Card) Validate() error {
	if err := ValidateCardNumber(c.PAN); err != nil {
		return err
	}
	return ValidateExpiry(c.ExpiryMonth, c.ExpiryYear)
}

// ValidateCardNumber applies length, digit and Luhn checks.
func ValidateCardNumber(pan string) error {
	digits := stripSpaces(pan)
	if digits == "" {
		return NewInvalidCardNumberError("card number is required")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return NewInvalidCardNumberError("card number must contain digits only")
		}
	}
	if len(digits) < minPANLength || len(digits) > maxPANLength {
		return NewInvalidCardNumberError("card number must be 13 to 19 digits")
	}
	if !luhnValid(digits) {
		return NewInvalidCardNumberError("card number failed checksum")
	}
	return nil
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func ValidateExpiry(month, year int) error {
	return ValidateExpiryAt(month, year, time.Now())
}

// ValidateExpiryAt accepts two-digit years as 2000+year. A card is valid
// through the whole of its expiry month.
func ValidateExpiryAt(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return NewInvalidExpiryError("expiry month must be between 1 and 12")
	}
	if year < 0 {
		return NewInvalidExpiryError("expiry year must not be negative")
	}
	year = expandYear(year)

	currentYear, currentMonth := now.Year(), int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return NewInvalidExpiryError("card has expired")
	}
	return nil
}

func expandYear(year int) int {
	if year >= 0 && year < 100 {
		return 2000 + year
	}
	return year
}

// DetectBrand classifies a PAN by prefix.
func DetectBrand(pan string) CardBrand {
	digits := stripSpaces(pan)
	switch {
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return BrandMastercard
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return BrandAmex
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return BrandDiscover
	default:
		return BrandUnknown
	}
}

// MaskPAN keeps the first six and last four digits.
func MaskPAN(pan string) string {
	digits := stripSpaces(pan)
	if len(digits) < 10 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:6] + strings.Repeat("*", len(digits)-10) + digits[len(digits)-4:]
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
