package uischema

import "github.com/goliatone/go-authform/pkg/model"

// Store holds the form definitions parsed from a filesystem.
type Store struct {
	forms map[string]model.FormModel
	order []string
}

type documentFile struct {
	Forms map[string]FormDocument `json:"forms" yaml:"forms"`
}

// FormDocument is the serialized shape of one form. Keys are camelCase in
// both JSON and YAML.
type FormDocument struct {
	Title           string      `json:"title" yaml:"title"`
	Subtitle        string      `json:"subtitle" yaml:"subtitle"`
	Submit          string      `json:"submit" yaml:"submit"`
	Endpoint        string      `json:"endpoint" yaml:"endpoint"`
	Method          string      `json:"method" yaml:"method"`
	SubmitDelayMs   *int        `json:"submitDelayMs" yaml:"submitDelayMs"`
	RedirectDelayMs *int        `json:"redirectDelayMs" yaml:"redirectDelayMs"`
	RedirectTo      string      `json:"redirectTo" yaml:"redirectTo"`
	SuccessMessage  string      `json:"successMessage" yaml:"successMessage"`
	FailureMessage  string      `json:"failureMessage" yaml:"failureMessage"`
	InvalidMessage  string      `json:"invalidMessage" yaml:"invalidMessage"`
	AlternateSignIn bool        `json:"alternateSignIn" yaml:"alternateSignIn"`
	Links           []LinkDocument  `json:"links" yaml:"links"`
	Fields          []FieldDocument `json:"fields" yaml:"fields"`
}

// LinkDocument is a serialized model.Link.
type LinkDocument struct {
	Label string `json:"label" yaml:"label"`
	Href  string `json:"href" yaml:"href"`
}

// FieldDocument is the serialized shape of one field.
type FieldDocument struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Role        string `json:"role" yaml:"role"`
	Label       string `json:"label" yaml:"label"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`
	InputType   string `json:"inputType" yaml:"inputType"`
	Required    bool   `json:"required" yaml:"required"`
	Validator   string `json:"validator" yaml:"validator"`
	Message     string `json:"message" yaml:"message"`
	MinLength   int    `json:"minLength" yaml:"minLength"`
	DebounceMs  int    `json:"debounceMs" yaml:"debounceMs"`
	Strength    bool   `json:"strength" yaml:"strength"`
	Confirms    string `json:"confirms" yaml:"confirms"`
}
