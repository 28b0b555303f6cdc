package notifier

import "strings"

// domesticCountryCode prefixes bare national numbers. The gateway requires
// E.164 and silently drops anything else.
const domesticCountryCode = "1"

// NormalizePhone coerces a stored phone number into E.164. Numbers already
// carrying a + pass through unchanged; a bare 10-digit number is assumed
// domestic; an 11-digit number starting with the domestic country code
// gets a + prefix; anything else is prefixed with + as a last resort.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}

	digits := digitsOnly(trimmed)
	switch {
	case len(digits) == 10:
		return "+" + domesticCountryCode + digits
	case len(digits) == 11 && strings.HasPrefix(digits, domesticCountryCode):
		return "+" + digits
	default:
		return "+" + digits
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
