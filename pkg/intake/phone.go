package intake

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the numbering plan assumed for numbers without a prefix.
const DefaultRegion = "CO"

// DisplayPhone renders a stored phone number in international format for
// review screens. Values that do not parse as a valid number are returned
// trimmed but otherwise untouched.
func DisplayPhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	num, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(num) {
		return trimmed
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// IsMobile reports whether raw is a valid Colombian mobile number.
func IsMobile(raw string) bool {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return false
	}
	return phonenumbers.GetNumberType(num) == phonenumbers.MOBILE
}
