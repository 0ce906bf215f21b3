package openapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/openapi"
)

func loadFixture(t *testing.T) openapi.Document {
	t.Helper()
	doc, err := openapi.NewLoader().Load(context.Background(), openapi.SourceFromFile(filepath.Join("testdata", "auth.yaml")))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return doc
}

func TestFormsFromAnnotatedOperations(t *testing.T) {
	forms, err := openapi.Forms(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("Forms: %v", err)
	}

	var ids []string
	for _, form := range forms {
		ids = append(ids, form.ID)
	}
	if diff := cmp.Diff([]string{"login", "join"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	login := forms[0]
	want := model.FormModel{
		ID:             "login",
		Title:          "Welcome back",
		SubmitLabel:    "Log in",
		Endpoint:       "/auth/login",
		Method:         "POST",
		RedirectTo:     "/home",
		SuccessMessage: "Logged in",
		SubmitDelay:    100 * time.Millisecond,
		Fields: []model.Field{
			{
				Name:        "email",
				Type:        model.FieldTypeString,
				Role:        model.RoleEmail,
				Required:    true,
				Label:       "Email",
				Placeholder: "you@example.com",
				InputType:   "email",
				Validator:   "email",
			},
			{
				Name:      "password",
				Type:      model.FieldTypeString,
				Role:      model.RolePassword,
				Required:  true,
				Label:     "password",
				InputType: "password",
				MinLength: 8,
			},
		},
	}
	if diff := cmp.Diff(want, login); diff != "" {
		t.Fatalf("login mismatch (-want +got):\n%s", diff)
	}
}

func TestFormsInfersSignUpRoles(t *testing.T) {
	forms, err := openapi.Forms(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("Forms: %v", err)
	}
	join := forms[1]

	var names []string
	for _, field := range join.Fields {
		names = append(names, field.Name)
	}
	wantOrder := []string{"given_name", "email", "password", "passwordConfirm", "acceptTerms", "nickname"}
	if diff := cmp.Diff(wantOrder, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	given, _ := join.Field("given_name")
	if given.Role != model.RoleFirstName || given.Validator != "name" || given.Required {
		t.Fatalf("unexpected given_name %+v", given)
	}
	password, _ := join.Field("password")
	if !password.Strength || password.Validator != "password" {
		t.Fatalf("unexpected password %+v", password)
	}
	confirm, _ := join.Field("passwordConfirm")
	if confirm.Role != model.RoleConfirmPassword || confirm.Confirms != "password" || confirm.Debounce != 300*time.Millisecond {
		t.Fatalf("unexpected confirm %+v", confirm)
	}
	terms, _ := join.Field("acceptTerms")
	if terms.Type != model.FieldTypeBoolean || terms.Role != model.RoleTerms || terms.InputType != "checkbox" || terms.Message != "Accept the terms to continue" {
		t.Fatalf("unexpected terms %+v", terms)
	}
	nickname, _ := join.Field("nickname")
	if nickname.Role != "" || nickname.Validator != "" {
		t.Fatalf("unexpected nickname %+v", nickname)
	}
}

func TestFormsErrors(t *testing.T) {
	noForms := `openapi: 3.0.3
info: {title: x, version: "1"}
paths:
  /ping:
    post:
      responses:
        "200": {description: ok}
`
	noBody := `openapi: 3.0.3
info: {title: x, version: "1"}
paths:
  /ping:
    post:
      x-authform: {}
      responses:
        "200": {description: ok}
`
	doc, err := openapi.NewDocument(openapi.SourceFromFS("inline.yaml"), []byte(noForms))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if _, err := openapi.Forms(context.Background(), doc); !errors.Is(err, openapi.ErrNoForms) {
		t.Fatalf("expected ErrNoForms, got %v", err)
	}

	doc, _ = openapi.NewDocument(openapi.SourceFromFS("inline.yaml"), []byte(noBody))
	if _, err := openapi.Forms(context.Background(), doc); err == nil || !strings.Contains(err.Error(), "no object request body") {
		t.Fatalf("expected request body error, got %v", err)
	}

	doc, _ = openapi.NewDocument(openapi.SourceFromFS("inline.yaml"), []byte("{not yaml"))
	if _, err := openapi.Forms(context.Background(), doc, openapi.WithValidation(false)); err == nil {
		t.Fatalf("expected load error")
	}

	if _, err := openapi.NewDocument(openapi.SourceFromFS("empty"), nil); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestLoaderSources(t *testing.T) {
	payload, err := os.ReadFile(filepath.Join("testdata", "auth.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	ctx := context.Background()

	fsLoader := openapi.NewLoader(openapi.WithFileSystem(fstest.MapFS{"api/auth.yaml": {Data: payload}}))
	doc, err := fsLoader.Load(ctx, openapi.SourceFromFS("api/auth.yaml"))
	if err != nil {
		t.Fatalf("fs load: %v", err)
	}
	if doc.Location() != "api/auth.yaml" || doc.Source().Kind() != openapi.SourceKindFS {
		t.Fatalf("unexpected source %q %q", doc.Location(), doc.Source().Kind())
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	src, err := openapi.SourceFromURL(server.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("SourceFromURL: %v", err)
	}
	if _, err := openapi.NewLoader().Load(ctx, src); err == nil {
		t.Fatalf("expected http disabled error")
	}
	doc, err = openapi.NewLoader(openapi.WithHTTPFallback(time.Second)).Load(ctx, src)
	if err != nil {
		t.Fatalf("http load: %v", err)
	}
	if len(doc.Raw()) != len(payload) {
		t.Fatalf("payload truncated")
	}

	missing, _ := openapi.SourceFromURL(server.URL + "/missing")
	if _, err := openapi.NewLoader(openapi.WithHTTPClient(server.Client())).Load(ctx, missing); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestParseSource(t *testing.T) {
	src, err := openapi.ParseSource("https://example.com/openapi.yaml")
	if err != nil || src.Kind() != openapi.SourceKindURL {
		t.Fatalf("unexpected url source %v %v", src, err)
	}
	src, err = openapi.ParseSource("./specs/../api.yaml")
	if err != nil || src.Kind() != openapi.SourceKindFile || src.Location() != "api.yaml" {
		t.Fatalf("unexpected file source %v %v", src, err)
	}
	if _, err := openapi.ParseSource(""); err == nil {
		t.Fatalf("expected empty source error")
	}
	if _, err := openapi.SourceFromURL("ftp://example.com/x"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
