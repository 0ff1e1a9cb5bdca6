// Package security provides input sanitization, abuse detection, rate limiting and an
// audit trail for application submissions.
package security

import (
	"regexp"
	"strings"
)

// FieldKind selects the sanitization rules applied to a value.
type FieldKind string

const (
	KindDefault   FieldKind = "default"
	KindName      FieldKind = "name"
	KindEmail     FieldKind = "email"
	KindPhone     FieldKind = "phone"
	KindRegNumber FieldKind = "regNumber"
	KindText      FieldKind = "text"
)

var (
	disallowedName      = regexp.MustCompile(`[^a-zA-Z\s'\-]`)
	disallowedEmail     = regexp.MustCompile(`[^a-zA-Z0-9@.\-_]`)
	disallowedPhone     = regexp.MustCompile(`[^0-9\s()\-+]`)
	disallowedRegNumber = regexp.MustCompile(`[^0-9A-Za-z]`)
	htmlTag             = regexp.MustCompile(`<[^>]*>`)
	unsafeChars         = regexp.MustCompile(`[<>"'%;()]`)
)

// Sanitize trims input, drops NUL bytes and strips every character the kind does not allow.
// Registration numbers are also upper-cased.
func Sanitize(input string, kind FieldKind) string {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, "\x00", "")

	switch kind {
	case KindName:
		s = disallowedName.ReplaceAllString(s, "")
	case KindEmail:
		s = disallowedEmail.ReplaceAllString(s, "")
	case KindPhone:
		s = disallowedPhone.ReplaceAllString(s, "")
	case KindRegNumber:
		s = strings.ToUpper(disallowedRegNumber.ReplaceAllString(s, ""))
	case KindText:
		s = htmlTag.ReplaceAllString(s, "")
		s = unsafeChars.ReplaceAllString(s, "")
	default:
		s = unsafeChars.ReplaceAllString(s, "")
	}
	return s
}

// CollapseWhitespace trims s and folds internal whitespace runs into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
