package render

import (
	"math"
	"strings"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/validation"
)

// Page is the template data derived from a controller snapshot. Every
// user-facing string is sanitized; templates still escape on output.
type Page struct {
	FormID          string            `json:"formId"`
	Title           string            `json:"title"`
	Subtitle        string            `json:"subtitle,omitempty"`
	SubmitLabel     string            `json:"submitLabel"`
	Action          string            `json:"action"`
	Method          string            `json:"method"`
	Fields          []PageField       `json:"fields"`
	Loading         bool              `json:"loading"`
	Notification    *PageNotification `json:"notification,omitempty"`
	FormErrors      []string          `json:"formErrors,omitempty"`
	Hidden          []HiddenField     `json:"hidden,omitempty"`
	Links           []model.Link      `json:"links,omitempty"`
	AlternateSignIn bool              `json:"alternateSignIn"`
	// RefreshAfter is the meta refresh delay in whole seconds while a
	// redirect is pending.
	RefreshAfter int    `json:"refreshAfter,omitempty"`
	Redirect     string `json:"redirect,omitempty"`
	Theme        string `json:"theme"`
	Variant      string `json:"variant,omitempty"`
	Style        string `json:"style"`
	IconClose    string `json:"iconClose"`
	IconEye      string `json:"iconEye"`
}

// PageField is one rendered input.
type PageField struct {
	Name           string        `json:"name"`
	ID             string        `json:"id"`
	Label          string        `json:"label"`
	Placeholder    string        `json:"placeholder,omitempty"`
	InputType      string        `json:"inputType"`
	Value          string        `json:"value,omitempty"`
	Checkbox       bool          `json:"checkbox"`
	Checked        bool          `json:"checked"`
	Required       bool          `json:"required"`
	Toggle         bool          `json:"toggle"`
	State          string        `json:"state"`
	Message        string        `json:"message,omitempty"`
	MessageVisible bool          `json:"messageVisible"`
	Strength       *PageStrength `json:"strength,omitempty"`
}

// PageStrength feeds the password strength meter.
type PageStrength struct {
	Tier    string `json:"tier"`
	Label   string `json:"label"`
	Percent int    `json:"percent"`
	Color   string `json:"color"`
}

// PageNotification is the visible notification, if any.
type PageNotification struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

// BuildPage flattens a snapshot and per-request options into template data.
// Secret values are only echoed back when opts.EchoSecrets is set.
func BuildPage(view form.View, opts RenderOptions) Page {
	def := view.Form
	palette := opts.Palette
	if palette.Tokens == nil {
		palette = ResolvePalette(nil)
	}

	page := Page{
		FormID:          def.ID,
		Title:           SanitizeText(def.Title),
		Subtitle:        SanitizeText(def.Subtitle),
		SubmitLabel:     SanitizeText(def.SubmitLabel),
		Action:          strings.TrimSpace(opts.Action),
		Method:          strings.ToUpper(def.Method),
		Loading:         view.Loading,
		FormErrors:      SanitizeTexts(opts.FormErrors),
		Hidden:          NormalizeHiddenFields(opts.Hidden...),
		AlternateSignIn: def.AlternateSignIn,
		Theme:           palette.Theme,
		Variant:         palette.Variant,
		Style:           palette.Style(),
		IconClose:       SanitizeIcon(palette.Token(TokenIconClose)),
		IconEye:         SanitizeIcon(palette.Token(TokenIconEye)),
	}
	if page.Action == "" {
		page.Action = def.Endpoint
	}
	if page.Method == "" || page.Method == "GET" {
		page.Method = "POST"
	}
	if page.Title == "" {
		page.Title = def.ID
	}
	for _, link := range def.Links {
		page.Links = append(page.Links, model.Link{Label: SanitizeText(link.Label), Href: link.Href})
	}

	for _, state := range view.Fields {
		fieldDef, _ := def.Field(state.Name)
		page.Fields = append(page.Fields, buildField(def.ID, fieldDef, state, palette, opts.EchoSecrets))
	}

	if n := view.Notification; n != nil {
		color := palette.Token(TokenSuccess)
		if n.Kind == notify.KindError {
			color = palette.Token(TokenError)
		}
		page.Notification = &PageNotification{
			ID:      n.ID.String(),
			Kind:    string(n.Kind),
			Message: SanitizeText(n.Message),
			Color:   color,
		}
	}

	if view.Redirect != "" && !view.Redirected {
		page.Redirect = view.Redirect
		page.RefreshAfter = int(math.Ceil(def.RedirectDelay.Seconds()))
	}
	return page
}

func buildField(formID string, def model.Field, state form.FieldState, palette Palette, echoSecrets bool) PageField {
	field := PageField{
		Name:           state.Name,
		ID:             formID + "-" + state.Name,
		Label:          SanitizeText(state.Label),
		Placeholder:    SanitizeText(def.Placeholder),
		InputType:      def.InputType,
		Checkbox:       def.Type == model.FieldTypeBoolean,
		Checked:        state.Checked,
		Required:       def.Required,
		Toggle:         def.Secret(),
		State:          string(state.State),
		Message:        SanitizeText(state.Message),
		MessageVisible: state.MessageVisible,
	}
	if field.InputType == "" {
		field.InputType = "text"
	}
	if field.Toggle {
		field.InputType = "password"
		if !state.Masked {
			field.InputType = "text"
		}
		if echoSecrets && !state.Masked {
			field.Value = state.Value
		}
	} else {
		field.Value = state.Value
	}
	if def.Strength {
		field.Strength = buildStrength(state.Strength, palette)
	}
	return field
}

func buildStrength(tier validation.Tier, palette Palette) *PageStrength {
	strength := &PageStrength{
		Tier:    tier.String(),
		Label:   tier.Label(),
		Percent: int(tier) * 25,
	}
	switch tier {
	case validation.TierWeak:
		strength.Color = palette.Token(TokenStrengthWeak)
	case validation.TierFair:
		strength.Color = palette.Token(TokenStrengthFair)
	case validation.TierGood:
		strength.Color = palette.Token(TokenStrengthGood)
	case validation.TierStrong:
		strength.Color = palette.Token(TokenStrengthStrong)
	}
	return strength
}
