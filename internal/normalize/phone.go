package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/sells-group/booking-sync/internal/booking"
)

// InternationalPhone parses raw without a default region and formats it in
// international notation ("+41 44 545 53 00"). ok is false when raw is empty
// or not parseable, in which case formatted is "".
func InternationalPhone(raw string) (formatted string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	num, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL), true
}

// FormatPhone returns raw in international notation, or raw trimmed and
// otherwise unchanged when it cannot be parsed.
func FormatPhone(raw string) string {
	if formatted, ok := InternationalPhone(raw); ok {
		return formatted
	}
	return strings.TrimSpace(raw)
}

// CandidatePhone returns the formatted value of the first answer whose label
// names a phone field, or "" when no answer matches or its value is empty.
func CandidatePhone(answers booking.Answers, keywords booking.Keywords) string {
	value, _ := answers.Lookup(keywords)
	return FormatPhone(value)
}
