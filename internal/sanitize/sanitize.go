// Package sanitize normalizes user-entered text before it is stored or sent.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// MinPhoneDigits is the digit count a phone number needs in the lite flow.
const MinPhoneDigits = 6

// emailShape is a shape check only: something@something.something without
// whitespace. It accepts addresses RFC 5322 would reject and vice versa.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Text trims value, collapses every whitespace run to a single space and
// truncates the result to at most maxLen runes. A non-positive maxLen yields "".
func Text(value string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	collapsed := strings.Join(strings.Fields(value), " ")

	runes := []rune(collapsed)
	if len(runes) <= maxLen {
		return collapsed
	}
	// Cutting may land right after a space.
	return strings.TrimRightFunc(string(runes[:maxLen]), unicode.IsSpace)
}

// List sanitizes each element, drops empty results and duplicates, and keeps
// insertion order.
func List(values []string, maxLen int) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = Text(v, maxLen)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// IsEmail reports whether value has the shape of an email address.
func IsEmail(value string) bool {
	return emailShape.MatchString(value)
}

// Digits returns only the ASCII digits of value.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPhone reports whether value carries at least MinPhoneDigits digits.
func IsPhone(value string) bool {
	return len(Digits(value)) >= MinPhoneDigits
}
