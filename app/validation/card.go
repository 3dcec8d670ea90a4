// Package validation holds the pure payment validation and PII-safety helpers
// shared by the gateway adapters and the checkout API.
package validation

import (
	"strings"
	"time"
)

type CardType string

const (
	CardTypeVisa       CardType = "visa"
	CardTypeMastercard CardType = "mastercard"
	CardTypeAmex       CardType = "amex"
	CardTypeDiscover   CardType = "discover"
	CardTypeJCB        CardType = "jcb"
	CardTypeDiners     CardType = "diners"
	CardTypeUnknown    CardType = "unknown"
)

// ValidateCardNumber strips separators and applies the Luhn checksum.
func ValidateCardNumber(number string) bool {
	digits := digitsOnly(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

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

// ValidateExpiryDate accepts MM/YY and requires the expiry to be strictly in
// the future. Years are expanded to 20YY.
func ValidateExpiryDate(expiry string, now time.Time) bool {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	month := digitsOnly(parts[0])
	year := digitsOnly(parts[1])
	if len(month) != 2 || len(year) != 2 {
		return false
	}

	m := int(month[0]-'0')*10 + int(month[1]-'0')
	if m < 1 || m > 12 {
		return false
	}
	y := 2000 + int(year[0]-'0')*10 + int(year[1]-'0')

	if y > now.Year() {
		return true
	}
	if y < now.Year() {
		return false
	}
	return m > int(now.Month())
}

// ValidateCVV requires 4 digits for amex, 3 for every other network.
func ValidateCVV(cvv string, cardType CardType) bool {
	digits := digitsOnly(cvv)
	if len(digits) != len(cvv) {
		return false
	}
	if cardType == CardTypeAmex {
		return len(digits) == 4
	}
	return len(digits) == 3
}

// DetectCardType classifies a card number by its issuer prefix.
func DetectCardType(number string) CardType {
	digits := digitsOnly(number)
	if digits == "" {
		return CardTypeUnknown
	}

	switch {
	case strings.HasPrefix(digits, "4"):
		return CardTypeVisa
	case inPrefixRange(digits, 2, 51, 55), inPrefixRange(digits, 2, 22, 27):
		return CardTypeMastercard
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return CardTypeAmex
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return CardTypeDiscover
	case strings.HasPrefix(digits, "35"):
		return CardTypeJCB
	case inPrefixRange(digits, 3, 300, 305), strings.HasPrefix(digits, "36"), strings.HasPrefix(digits, "38"):
		return CardTypeDiners
	default:
		return CardTypeUnknown
	}
}

func inPrefixRange(digits string, width, low, high int) bool {
	if len(digits) < width {
		return false
	}
	prefix := 0
	for i := 0; i < width; i++ {
		prefix = prefix*10 + int(digits[i]-'0')
	}
	return prefix >= low && prefix <= high
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
