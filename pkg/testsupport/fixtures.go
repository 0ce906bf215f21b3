package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/uischema"
)

// SignInForm returns the bundled sign-in definition.
func SignInForm(t testing.TB) model.FormModel {
	t.Helper()
	return mustForm(t, model.FormSignIn)
}

// SignUpForm returns the bundled sign-up definition.
func SignUpForm(t testing.TB) model.FormModel {
	t.Helper()
	return mustForm(t, model.FormSignUp)
}

// Forms returns the bundled definition store.
func Forms(t testing.TB) *uischema.Store {
	t.Helper()
	store, err := uischema.Default()
	if err != nil {
		t.Fatalf("load bundled forms: %v", err)
	}
	return store
}

func mustForm(t testing.TB, id string) model.FormModel {
	t.Helper()
	form, ok := Forms(t).Form(id)
	if !ok {
		t.Fatalf("bundled form %q missing", id)
	}
	return form
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
