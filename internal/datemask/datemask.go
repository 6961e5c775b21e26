// Package datemask implements the dd/MM/yyyy date input mask: raw digits are
// what the user types, masked text is what is shown, with '/' inserted after
// the day and month.
package datemask

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Layout is the masked date layout in Go reference form.
const Layout = "02/01/2006"

// MaxDigits is the number of digits in a complete date (ddMMyyyy).
const MaxDigits = 8

var ErrInvalidDate = errors.New("invalid date, expected dd/MM/yyyy")

// Digits keeps only ASCII digits of raw, truncated to MaxDigits.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == MaxDigits {
				break
			}
		}
	}
	return b.String()
}

// Format renders digits in masked form. A separator follows the 2nd and 4th
// digit as soon as it is typed, so "1203" becomes "12/03/". Input is passed
// through Digits first.
func Format(digits string) string {
	digits = Digits(digits)

	var b strings.Builder
	for i, r := range digits {
		b.WriteRune(r)
		if i == 1 || i == 3 {
			b.WriteByte('/')
		}
	}
	return b.String()
}

// ToMasked maps a cursor offset in the raw digits to the masked text.
func ToMasked(offset int) int {
	switch {
	case offset <= 1:
		return offset
	case offset <= 3:
		return offset + 1
	case offset <= MaxDigits:
		return offset + 2
	default:
		return len(Layout)
	}
}

// ToRaw maps a cursor offset in the masked text back to the raw digits.
func ToRaw(offset int) int {
	switch {
	case offset <= 2:
		return offset
	case offset <= 5:
		return offset - 1
	case offset <= len(Layout):
		return offset - 2
	default:
		return MaxDigits
	}
}

// Parse accepts either eight raw digits or masked text and returns the
// calendar date at midnight UTC. Anything other than digits and '/' is
// rejected, as are impossible dates such as 31/02/2024.
func Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	for _, r := range input {
		if r != '/' && !unicode.IsDigit(r) {
			return time.Time{}, ErrInvalidDate
		}
	}

	digits := strings.ReplaceAll(input, "/", "")
	if len(digits) != MaxDigits || Digits(digits) != digits {
		return time.Time{}, ErrInvalidDate
	}
	if input != digits && input != Format(digits) {
		return time.Time{}, ErrInvalidDate
	}

	t, err := time.Parse("02012006", digits)
	if err != nil || t.Year() == 0 {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FromTime formats t in masked form, e.g. for a date picked from a calendar.
func FromTime(t time.Time) string {
	return t.Format(Layout)
}

// Normalize parses input and returns it in canonical masked form.
func Normalize(input string) (string, error) {
	t, err := Parse(input)
	if err != nil {
		return "", err
	}
	return FromTime(t), nil
}
