package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validator names understood by Validate.
const (
	ValidatorEmail    = "email"
	ValidatorPassword = "password"
	ValidatorPhone    = "phone"
	ValidatorName     = "name"
)

const (
	// PasswordMinLength is the length rule inside PasswordChecks.
	PasswordMinLength = 8
	// PasswordRulesRequired is how many PasswordChecks must pass for a
	// password field to be accepted on submit.
	PasswordRulesRequired = 3
	// NameMinLength is the minimum trimmed length of a name.
	NameMinLength = 2
	// SignInPasswordMinLength is the looser bar applied on the sign-in screen.
	SignInPasswordMinLength = 6
)

// SpecialCharacters lists the characters that satisfy the special rule.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// whitespace mirrors the browser notion of \s: ASCII spacing, vertical tab,
// every Unicode separator and the BOM.
const whitespace = `\s\v\pZ\x{FEFF}`

var (
	emailPattern     = regexp.MustCompile(`^[^` + whitespace + `@]+@[^` + whitespace + `@]+\.[^` + whitespace + `@]+$`)
	phonePattern     = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)
	namePattern      = regexp.MustCompile(`^[a-zA-Z` + whitespace + `]*$`)
	uppercasePattern = regexp.MustCompile(`[A-Z]`)
	lowercasePattern = regexp.MustCompile(`[a-z]`)
	digitPattern     = regexp.MustCompile(`[0-9]`)
)

// PasswordChecks is the per-rule breakdown for a password.
type PasswordChecks struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

// Count returns how many rules passed.
func (c PasswordChecks) Count() int {
	n := 0
	for _, ok := range []bool{c.Length, c.Uppercase, c.Lowercase, c.Number, c.Special} {
		if ok {
			n++
		}
	}
	return n
}

// IsValidEmail reports whether s looks like local@domain.tld with no
// whitespace and a single '@'. It is a presentation hint, not RFC 5322.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// CheckPasswordRules evaluates every password rule independently.
func CheckPasswordRules(s string) PasswordChecks {
	return PasswordChecks{
		Length:    utf8.RuneCountInString(s) >= PasswordMinLength,
		Uppercase: uppercasePattern.MatchString(s),
		Lowercase: lowercasePattern.MatchString(s),
		Number:    digitPattern.MatchString(s),
		Special:   strings.ContainsAny(s, SpecialCharacters),
	}
}

// IsValidPhone strips all whitespace and accepts an optional '+' followed by
// 1-16 digits without a leading zero.
func IsValidPhone(s string) bool {
	compact := StripWhitespace(s)
	if compact == "" {
		return false
	}
	return phonePattern.MatchString(compact)
}

// IsValidName requires at least NameMinLength characters after trimming and
// only letters or whitespace.
func IsValidName(s string) bool {
	trimmed := TrimSpace(s)
	if utf8.RuneCountInString(trimmed) < NameMinLength {
		return false
	}
	return namePattern.MatchString(s)
}

// ConfirmMatches compares the raw strings, case-sensitive and untrimmed.
func ConfirmMatches(password, confirm string) bool {
	return password == confirm
}

// MinLength reports whether s holds at least n characters.
func MinLength(s string, n int) bool {
	return utf8.RuneCountInString(s) >= n
}

// StripWhitespace removes every whitespace rune from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if isSpace(r) {
			return -1
		}
		return r
	}, s)
}

// TrimSpace trims leading and trailing whitespace using the same whitespace
// set as the validators.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.In(r, unicode.Z) || r == '\uFEFF'
}

// Predicate is a single-value check used by the dispatcher.
type Predicate func(string) bool

var predicates = map[string]Predicate{
	ValidatorEmail: IsValidEmail,
	ValidatorPhone: IsValidPhone,
	ValidatorName:  IsValidName,
	ValidatorPassword: func(s string) bool {
		return CheckPasswordRules(s).Count() >= PasswordRulesRequired
	},
}

// Lookup returns the predicate registered under name.
func Lookup(name string) (Predicate, bool) {
	fn, ok := predicates[name]
	return fn, ok
}

// Known reports whether name is a registered validator. The empty name is
// treated as known (no validator).
func Known(name string) bool {
	if name == "" {
		return true
	}
	_, ok := predicates[name]
	return ok
}
