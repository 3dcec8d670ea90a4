package validation

import (
	"math"
	"strings"
)

// SanitizeAmount rounds to exactly two decimal places so float drift cannot
// change what is sent to a gateway.
func SanitizeAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ValidateAmount checks finiteness and inclusive bounds.
func ValidateAmount(amount, min, max float64) bool {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return false
	}
	return amount >= min && amount <= max
}

// DetectSuspiciousActivity returns advisory warnings only. It never blocks a
// transaction by itself.
func DetectSuspiciousActivity(amount float64, email string) []string {
	var warnings []string

	if amount >= 100_000_000 {
		warnings = append(warnings, "unusually large amount")
	}
	if amount > 0 && amount < 1 {
		warnings = append(warnings, "unusually small amount")
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email != "" {
		at := strings.Index(email, "@")
		if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
			warnings = append(warnings, "suspicious email shape")
		} else if strings.Contains(email, "+") && strings.Count(email[:at], ".") > 3 {
			warnings = append(warnings, "suspicious email shape")
		}
	}

	return warnings
}
