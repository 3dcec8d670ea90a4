package validation

import (
	"strconv"
	"strings"
)

// MaskCardNumber replaces all but the last four digits with '*'.
func MaskCardNumber(number string) string {
	digits := digitsOnly(number)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// HashForLogging is a rolling hash used to correlate log lines without
// recording raw PII. It is not a security control.
func HashForLogging(value string) string {
	var h uint32
	for _, r := range value {
		h = h*31 + uint32(r)
	}
	return "h" + strconv.FormatUint(uint64(h), 16)
}
