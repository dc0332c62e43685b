// Package credential contains the pure validation rules for the three
// identity factors presented at the kiosk: CPF, OAB license number and
// birth date. Everything here is stateless and side-effect free.
package credential

import (
	"regexp"
	"strings"
	"time"

	"guarita/internal/domain/entity"
)

const cpfLength = 11

var (
	nonDigits       = regexp.MustCompile(`\D`)
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
	oabPattern      = regexp.MustCompile(`^[A-Z]{2,3}[0-9]{4,6}$`)
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstPattern = regexp.MustCompile(`^(\d{2})[/-](\d{2})[/-](\d{4})$`)
)

// NormalizeCPF strips every non-digit character from the input.
func NormalizeCPF(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// ValidateCPF reports whether the input is a well-formed CPF: 11 digits,
// not all identical, and both verifier digits matching the weighted-sum
// mod-11 checksum (a remainder of 10 maps to check digit 0).
func ValidateCPF(raw string) bool {
	digits := NormalizeCPF(raw)
	if len(digits) != cpfLength {
		return false
	}

	allSame := true
	for i := 1; i < cpfLength; i++ {
		if digits[i] != digits[0] {
			allSame = false

			break
		}
	}
	if allSame {
		return false
	}

	first := verifierDigit(digits, 9)
	second := verifierDigit(digits, 10)

	return int(digits[9]-'0') == first && int(digits[10]-'0') == second
}

// verifierDigit computes the check digit over the first sliceLength digits.
func verifierDigit(digits string, sliceLength int) int {
	total := 0
	for i := 0; i < sliceLength; i++ {
		total += int(digits[i]-'0') * (sliceLength + 1 - i)
	}

	remainder := (total * 10) % 11
	if remainder == 10 {
		return 0
	}

	return remainder
}

// NormalizeOAB strips non-alphanumeric characters and upper-cases the rest.
func NormalizeOAB(raw string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(raw, ""))
}

// ValidateOAB reports whether the normalized input matches the license
// format: 2-3 letters followed by 4-6 digits, nothing else.
func ValidateOAB(raw string) bool {
	return oabPattern.MatchString(NormalizeOAB(raw))
}

// NormalizeBirthDate converts the input to an ISO-8601 date string.
// YYYY-MM-DD passes through; DD/MM/YYYY and DD-MM-YYYY are reordered;
// anything else goes through generic date parsing and is reformatted using
// UTC calendar fields so a timezone shift can never move the date. Returns
// the empty string when the input is unparsable.
func NormalizeBirthDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if isoDatePattern.MatchString(trimmed) {
		return trimmed
	}

	if m := dayFirstPattern.FindStringSubmatch(trimmed); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006/01/02",
	} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC().Format("2006-01-02")
		}
	}

	return ""
}

// FindAuthorized normalizes the three credential fields exactly like
// registry load-time normalization and performs an exact simultaneous match
// on CPF, OAB and birth date. There is no partial match and no fallback
// beyond what normalization already applies. Returns nil when nothing
// matches.
func FindAuthorized(creds entity.Credentials, users []entity.AuthorizedUser) *entity.AuthorizedUser {
	cpf := NormalizeCPF(creds.CPF)
	oab := NormalizeOAB(creds.OAB)
	birthDate := NormalizeBirthDate(creds.BirthDate)

	for i := range users {
		if users[i].CPF == cpf && users[i].OAB == oab && users[i].BirthDate == birthDate {
			return &users[i]
		}
	}

	return nil
}

// ValidateBirthDate reports whether the input normalizes to a real calendar
// date no earlier than 1900 and no later than today (UTC, date-only
// comparison).
func ValidateBirthDate(raw string) bool {
	iso := NormalizeBirthDate(raw)
	if iso == "" {
		return false
	}

	// time.Parse rejects impossible dates such as day 32 or Feb 30.
	date, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return false
	}

	if date.Year() < 1900 {
		return false
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return !date.After(today)
}
