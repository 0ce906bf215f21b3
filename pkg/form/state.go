package form

import (
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/validation"
)

// FieldState is the presentation state of one input.
type FieldState struct {
	Name    string          `json:"name"`
	Label   string          `json:"label"`
	Role    model.FieldRole `json:"role,omitempty"`
	Type    model.FieldType `json:"type"`
	Value   string          `json:"value,omitempty"`
	Checked bool            `json:"checked,omitempty"`

	Touched bool `json:"touched"`
	Focused bool `json:"focused"`

	State validation.State `json:"state"`
	// Message keeps its text for MessageFadeDelay after MessageVisible drops
	// so a fade-out has something to show.
	Message        string `json:"message,omitempty"`
	MessageVisible bool   `json:"messageVisible"`

	// Masked is only meaningful for secret inputs.
	Masked bool `json:"masked,omitempty"`
	// Strength is only tracked for fields with the strength meter enabled.
	Strength validation.Tier `json:"strength,omitempty"`
}

// View is an immutable snapshot of a controller.
type View struct {
	Form         model.FormModel      `json:"form"`
	Fields       []FieldState         `json:"fields"`
	Loading      bool                 `json:"loading"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Redirect     string               `json:"redirect,omitempty"`
	Redirected   bool                 `json:"redirected,omitempty"`
}

// Field returns the state of the named field.
func (v View) Field(name string) (FieldState, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldState{}, false
}

// Valid reports whether no field currently shows an error.
func (v View) Valid() bool {
	for _, f := range v.Fields {
		if f.State == validation.StateError {
			return false
		}
	}
	return true
}

// ValidateField evaluates value against a field definition. related is the
// value of the field named by def.Confirms and is ignored otherwise. Checkbox
// fields treat "true", "on" and "1" as checked.
func ValidateField(def model.Field, value, related string) validation.Result {
	switch {
	case def.Type == model.FieldTypeBoolean:
		return validateChecked(def, parseChecked(value))
	case def.Confirms != "":
		return validation.ValidateConfirm(related, value)
	default:
		return validation.Validate(validation.Field{
			Label:     def.Label,
			Value:     value,
			Required:  def.Required,
			Validator: def.Validator,
			Message:   def.Message,
			MinLength: def.MinLength,
			Raw:       def.Secret(),
		})
	}
}

func validateChecked(def model.Field, checked bool) validation.Result {
	if checked {
		return validation.Result{Valid: true, State: validation.StateSuccess}
	}
	if def.Required {
		return validation.Result{Valid: false, Message: requiredMessage(def), State: validation.StateNeutral}
	}
	return validation.Result{Valid: true, State: validation.StateNeutral}
}

func requiredMessage(def model.Field) string {
	if def.Type == model.FieldTypeBoolean && def.Message != "" {
		return def.Message
	}
	label := def.Label
	if label == "" {
		label = def.Name
	}
	return label + " is required"
}

func parseChecked(value string) bool {
	switch validation.TrimSpace(value) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}

func isEmpty(def model.Field, state FieldState) bool {
	if def.Type == model.FieldTypeBoolean {
		return !state.Checked
	}
	return Blank(def, state.Value)
}

// Blank reports whether value counts as empty for a text field. Secret
// fields only count the empty string; other fields ignore surrounding
// whitespace.
func Blank(def model.Field, value string) bool {
	if def.Secret() {
		return value == ""
	}
	return validation.TrimSpace(value) == ""
}
