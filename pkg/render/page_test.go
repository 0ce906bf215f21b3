package render_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/render"
	"github.com/goliatone/go-authform/pkg/validation"
)

func signUpView() form.View {
	def := model.FormModel{
		ID:            model.FormSignUp,
		Title:         "Create <em>account</em>",
		SubmitLabel:   "Create Account",
		Endpoint:      "/signup",
		Method:        "post",
		RedirectTo:    "/",
		RedirectDelay: 1500 * time.Millisecond,
		Links:         []model.Link{{Label: "<b>Sign in</b>", Href: "/signin"}},
		Fields: []model.Field{
			{Name: "email", Type: model.FieldTypeString, Role: model.RoleEmail, InputType: "email", Required: true},
			{Name: "password", Type: model.FieldTypeString, Role: model.RolePassword, InputType: "password", Strength: true},
			{Name: "terms", Type: model.FieldTypeBoolean, Role: model.RoleTerms, InputType: "checkbox", Required: true},
		},
	}
	return form.View{
		Form: def,
		Fields: []form.FieldState{
			{Name: "email", Label: "Email", Value: "bad@", State: validation.StateError, Message: "Please enter a valid email address", MessageVisible: true},
			{Name: "password", Label: "Password", Value: "Secret1!", Masked: true, State: validation.StateSuccess, Strength: validation.TierGood},
			{Name: "terms", Label: "Terms", Checked: true, State: validation.StateSuccess},
		},
		Notification: &notify.Notification{Kind: notify.KindError, Message: "Please fix the errors <i>above</i>"},
		Redirect:     "/",
	}
}

func TestBuildPageFlattensView(t *testing.T) {
	page := render.BuildPage(signUpView(), render.RenderOptions{
		Hidden: []render.HiddenField{render.CSRFToken("_csrf", "abc")},
	})

	if page.Title != "Create account" {
		t.Fatalf("title not sanitized: %q", page.Title)
	}
	if page.Action != "/signup" || page.Method != "POST" {
		t.Fatalf("unexpected action/method %q %q", page.Action, page.Method)
	}
	if page.RefreshAfter != 2 || page.Redirect != "/" {
		t.Fatalf("unexpected redirect %q after %d", page.Redirect, page.RefreshAfter)
	}
	if diff := cmp.Diff([]model.Link{{Label: "Sign in", Href: "/signin"}}, page.Links); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
	if page.Notification == nil || page.Notification.Color != "#ef4444" || page.Notification.Message != "Please fix the errors above" {
		t.Fatalf("unexpected notification %+v", page.Notification)
	}
	if len(page.Hidden) != 1 || page.Hidden[0].Value != "abc" {
		t.Fatalf("unexpected hidden fields %+v", page.Hidden)
	}

	email := page.Fields[0]
	if email.ID != "signup-email" || email.Value != "bad@" || !email.MessageVisible || email.State != "error" {
		t.Fatalf("unexpected email field %+v", email)
	}

	password := page.Fields[1]
	if password.Value != "" {
		t.Fatalf("secret value echoed: %q", password.Value)
	}
	if !password.Toggle || password.InputType != "password" {
		t.Fatalf("unexpected password field %+v", password)
	}
	want := &render.PageStrength{Tier: "good", Label: "Good password", Percent: 75, Color: "#3b82f6"}
	if diff := cmp.Diff(want, password.Strength); diff != "" {
		t.Fatalf("strength mismatch (-want +got):\n%s", diff)
	}

	terms := page.Fields[2]
	if !terms.Checkbox || !terms.Checked || terms.Strength != nil {
		t.Fatalf("unexpected terms field %+v", terms)
	}
}

func TestBuildPageUnmaskedPasswordRendersAsText(t *testing.T) {
	view := signUpView()
	view.Fields[1].Masked = false
	view.Redirected = true

	page := render.BuildPage(view, render.RenderOptions{Action: "/custom"})
	if page.Fields[1].InputType != "text" {
		t.Fatalf("expected text input, got %q", page.Fields[1].InputType)
	}
	if page.Action != "/custom" {
		t.Fatalf("action override ignored: %q", page.Action)
	}
	if page.Redirect != "" || page.RefreshAfter != 0 {
		t.Fatalf("completed redirect should not refresh again")
	}
}

func TestBuildPageEchoesOnlyUnmaskedSecrets(t *testing.T) {
	view := signUpView()
	page := render.BuildPage(view, render.RenderOptions{EchoSecrets: true})
	if page.Fields[1].Value != "" {
		t.Fatalf("masked password must not be echoed, got %q", page.Fields[1].Value)
	}

	view.Fields[1].Masked = false
	page = render.BuildPage(view, render.RenderOptions{EchoSecrets: true})
	if page.Fields[1].Value != "Secret1!" {
		t.Fatalf("expected unmasked password echoed, got %q", page.Fields[1].Value)
	}

	page = render.BuildPage(view, render.RenderOptions{})
	if page.Fields[1].Value != "" {
		t.Fatalf("secrets are only echoed on request, got %q", page.Fields[1].Value)
	}
}
