package validation

import (
	"fmt"
	"strings"
)

// State is the visual state a field should display after validation.
type State string

const (
	StateNeutral State = "neutral"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Messages used when a field does not carry its own.
const (
	PasswordRulesMessage   = "Password must contain at least 8 characters with uppercase, lowercase, and numbers"
	ConfirmMismatchMessage = "Passwords do not match"
)

// Field is the input to Validate: a value plus the rules that apply to it.
type Field struct {
	Label     string
	Value     string
	Required  bool
	Validator string
	// Message overrides the generic "Please enter a valid <validator>" text.
	Message string
	// MinLength, when positive, rejects non-empty values shorter than it.
	MinLength int
	// Raw keeps surrounding whitespace (password inputs).
	Raw bool
}

// Result is produced fresh for every evaluation.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	State   State  `json:"state"`
}

// Passes is the form-level gate: an invalid but empty field does not block,
// so untouched optional inputs never hold up a submission.
func (r Result) Passes() bool {
	return r.Valid || r.State == StateNeutral
}

// Validate applies the field's rules and derives the visual state.
//
// Empty and required fields are invalid but stay neutral on screen; the
// required message is still returned so a submit pass can surface it.
func Validate(field Field) Result {
	value := field.Value
	if !field.Raw {
		value = TrimSpace(value)
	}

	valid, message := true, ""
	switch {
	case value == "" && field.Required:
		valid, message = false, requiredMessage(field.Label)
	case value != "":
		valid, message = check(field, value)
	}

	return Result{
		Valid:   valid,
		Message: message,
		State:   stateFor(valid, value != ""),
	}
}

// ValidateConfirm checks that confirm equals password exactly.
func ValidateConfirm(password, confirm string) Result {
	valid := ConfirmMatches(password, confirm)
	message := ""
	if !valid {
		message = ConfirmMismatchMessage
	}
	return Result{
		Valid:   valid,
		Message: message,
		State:   stateFor(valid, confirm != ""),
	}
}

func check(field Field, value string) (bool, string) {
	if field.MinLength > 0 && !MinLength(value, field.MinLength) {
		if field.Message != "" {
			return false, field.Message
		}
		return false, fmt.Sprintf("%s must be at least %d characters", labelOrDefault(field.Label), field.MinLength)
	}

	if field.Validator == ValidatorPassword {
		if CheckPasswordRules(value).Count() < PasswordRulesRequired {
			return false, PasswordRulesMessage
		}
		return true, ""
	}

	predicate, ok := Lookup(field.Validator)
	if !ok {
		return true, ""
	}
	if predicate(value) {
		return true, ""
	}
	if field.Message != "" {
		return false, field.Message
	}
	return false, "Please enter a valid " + field.Validator
}

func stateFor(valid, filled bool) State {
	switch {
	case !filled:
		return StateNeutral
	case valid:
		return StateSuccess
	default:
		return StateError
	}
}

func requiredMessage(label string) string {
	return labelOrDefault(label) + " is required"
}

func labelOrDefault(label string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return "This field"
}
