package userauth

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone reduces a raw phone string to the canonical local form
// used as the storage and verification key. Formatting characters are
// stripped first, then the two supported country prefixes collapse:
// "+7XXXXXXXXXX" becomes "8XXXXXXXXXX" and "+375XXXXXXXXX" becomes
// "376XXXXXXXXX". Any other leading "+" is dropped. Already local
// numbers pass through cleaned. The same input always yields the same
// output.
func NormalizePhone(phone string) string {
	cleaned := stripPhoneFormatting(phone)

	if strings.HasPrefix(cleaned, "+7") && len(cleaned) == 12 {
		return "8" + cleaned[2:]
	}

	if strings.HasPrefix(cleaned, "+375") && len(cleaned) == 13 {
		return "376" + cleaned[4:]
	}

	return strings.TrimPrefix(cleaned, "+")
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidPhone reports whether the raw input parses as a possible phone
// number. Used as a payload check before normalization, it never
// rejects numbers the normalizer can handle.
func ValidPhone(phone string) bool {
	cleaned := stripPhoneFormatting(phone)
	if cleaned == "" {
		return false
	}

	region := ""
	if !strings.HasPrefix(cleaned, "+") {
		region = "RU"
	}

	num, err := phonenumbers.Parse(cleaned, region)
	if err != nil {
		return false
	}

	return phonenumbers.IsPossibleNumber(num)
}

func stripPhoneFormatting(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
