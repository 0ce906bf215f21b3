package model

import "time"

// FieldType is the simplified enum for input kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
)

// FieldRole identifies the logical purpose of an input on an auth screen.
type FieldRole string

const (
	RoleEmail           FieldRole = "email"
	RolePassword        FieldRole = "password"
	RoleConfirmPassword FieldRole = "confirm-password"
	RoleFirstName       FieldRole = "first-name"
	RoleLastName        FieldRole = "last-name"
	RolePhone           FieldRole = "phone"
	RoleTerms           FieldRole = "terms"
)

// Secret reports whether inputs with this role are masked by default.
func (r FieldRole) Secret() bool {
	return r == RolePassword || r == RoleConfirmPassword
}

// Known reports whether r is one of the declared roles. The empty role is
// known: it marks a plain field.
func (r FieldRole) Known() bool {
	switch r {
	case "", RoleEmail, RolePassword, RoleConfirmPassword, RoleFirstName,
		RoleLastName, RolePhone, RoleTerms:
		return true
	}
	return false
}

// Form identifiers for the built-in screens.
const (
	FormSignIn = "signin"
	FormSignUp = "signup"
)

// Default timings.
const (
	SignInEmailDebounce     = 300 * time.Millisecond
	SignUpEmailDebounce     = 500 * time.Millisecond
	ConfirmPasswordDebounce = 300 * time.Millisecond

	SignInSubmitDelay = 2000 * time.Millisecond
	SignUpSubmitDelay = 2500 * time.Millisecond

	SignInRedirectDelay = 1500 * time.Millisecond
	SignUpRedirectDelay = 2000 * time.Millisecond

	// MessageFadeDelay is how long a hidden field message keeps its text so
	// a fade-out transition has something to show.
	MessageFadeDelay = 200 * time.Millisecond
)

// AlternateSignInMessage is shown by the placeholder OAuth button.
const AlternateSignInMessage = "Google Sign In would be implemented here"

// Field models one input on an auth screen.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Role        FieldRole `json:"role"`
	Required    bool      `json:"required"`
	Label       string    `json:"label,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	// InputType is the HTML input type hint (email, tel, password, ...).
	InputType string `json:"inputType,omitempty"`
	// Validator names a predicate from package validation.
	Validator string `json:"validator,omitempty"`
	// Message replaces the generic invalid-value text.
	Message   string `json:"message,omitempty"`
	MinLength int    `json:"minLength,omitempty"`
	// Debounce, when positive, re-validates this long after the last
	// keystroke.
	Debounce time.Duration `json:"debounce,omitempty"`
	// Strength enables the password strength meter and validates on every
	// keystroke.
	Strength bool `json:"strength,omitempty"`
	// Confirms names the field this one must equal.
	Confirms string `json:"confirms,omitempty"`
}

// FormModel is the definition of one auth screen.
type FormModel struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Subtitle    string  `json:"subtitle,omitempty"`
	SubmitLabel string  `json:"submitLabel,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty"`
	Method      string  `json:"method,omitempty"`
	Fields      []Field `json:"fields"`

	SubmitDelay   time.Duration `json:"submitDelay,omitempty"`
	RedirectDelay time.Duration `json:"redirectDelay,omitempty"`
	RedirectTo    string        `json:"redirectTo,omitempty"`

	SuccessMessage string `json:"successMessage,omitempty"`
	FailureMessage string `json:"failureMessage,omitempty"`
	// InvalidMessage is raised as an error notification when submit finds
	// invalid fields. Empty keeps the failure inline only.
	InvalidMessage string `json:"invalidMessage,omitempty"`

	// AlternateSignIn shows the placeholder OAuth button.
	AlternateSignIn bool `json:"alternateSignIn,omitempty"`
	// Links are secondary navigation entries (forgot password, switch form).
	Links []Link `json:"links,omitempty"`
}

// Secret reports whether the field holds a password: either its role is a
// secret one or it renders as a password input. Secret values are kept
// untrimmed and get a visibility toggle.
func (f Field) Secret() bool {
	return f.Role.Secret() || f.InputType == "password"
}

// Link is a labelled navigation target rendered under the form.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Field returns the field with the given name.
func (f FormModel) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldByRole returns the first field with the given role.
func (f FormModel) FieldByRole(role FieldRole) (Field, bool) {
	for _, field := range f.Fields {
		if field.Role == role {
			return field, true
		}
	}
	return Field{}, false
}
