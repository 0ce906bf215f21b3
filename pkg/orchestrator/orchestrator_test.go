package orchestrator_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authform/pkg/openapi"
	"github.com/goliatone/go-authform/pkg/orchestrator"
	"github.com/goliatone/go-authform/pkg/render"
	"github.com/goliatone/go-authform/pkg/renderers/jsonview"
)

const overlayYAML = `forms:
  signin:
    title: Welcome to Acme
    endpoint: /signin
    fields:
      - name: email
        role: email
        label: Work email
        required: true
        validator: email
  reset:
    title: Reset your password
    endpoint: /reset
    fields:
      - name: email
        role: email
        required: true
        validator: email
`

const resetAPI = `openapi: 3.0.3
info:
  title: Recovery
  version: "1.0"
paths:
  /auth/recover:
    post:
      operationId: recover
      summary: Recover access
      x-authform: {}
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
      responses:
        "204":
          description: sent
`

func TestFormsDefaultsToEmbeddedDefinitions(t *testing.T) {
	store, err := orchestrator.New().Forms(context.Background())
	if err != nil {
		t.Fatalf("Forms: %v", err)
	}
	if diff := cmp.Diff([]string{"signin", "signup"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFormsMergesOverlaysAndOpenAPI(t *testing.T) {
	overlay := fstest.MapFS{"forms.yaml": {Data: []byte(overlayYAML)}}
	apis := fstest.MapFS{"recover.yaml": {Data: []byte(resetAPI)}}

	orch := orchestrator.New(
		orchestrator.WithOverlayFS(overlay),
		orchestrator.WithLoader(openapi.NewLoader(openapi.WithFileSystem(apis))),
		orchestrator.WithOpenAPISource(openapi.SourceFromFS("recover.yaml")),
	)
	store, err := orch.Forms(context.Background())
	if err != nil {
		t.Fatalf("Forms: %v", err)
	}
	if diff := cmp.Diff([]string{"recover", "reset", "signin", "signup"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	signin, _ := store.Form("signin")
	if signin.Title != "Welcome to Acme" || len(signin.Fields) != 1 {
		t.Fatalf("overlay did not replace signin: %+v", signin)
	}
	recovered, _ := store.Form("recover")
	if recovered.Title != "Recover access" || recovered.Endpoint != "/auth/recover" {
		t.Fatalf("unexpected imported form: %+v", recovered)
	}

	again, err := orch.Forms(context.Background())
	if err != nil || again != store {
		t.Fatalf("expected cached store, got %p (%v)", again, err)
	}
}

func TestFormsWithoutDefinitionsFails(t *testing.T) {
	_, err := orchestrator.New(orchestrator.WithUISchemaFS(nil)).Forms(context.Background())
	if err == nil {
		t.Fatalf("expected error for empty store")
	}
}

func TestGenerateRendersVanillaByDefault(t *testing.T) {
	out, err := orchestrator.New().Generate(context.Background(), orchestrator.Request{
		FormID: "signin",
		Values: map[string]string{"email": "user@example.com"},
		RenderOptions: render.RenderOptions{
			Hidden: []render.HiddenField{render.CSRFToken("_csrf", "t0ken")},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"Welcome back",
		`value="user@example.com"`,
		`name="_csrf" value="t0ken"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestGenerateJSONWithThemeVariant(t *testing.T) {
	orch := orchestrator.New(
		orchestrator.WithDefaultRenderer(jsonview.Name),
		orchestrator.WithTheme(nil, "", "dark"),
	)
	out, err := orch.Generate(context.Background(), orchestrator.Request{FormID: "signup"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var doc jsonview.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Page.Variant != "dark" || len(doc.Page.Fields) != 7 {
		t.Fatalf("unexpected page %+v", doc.Page)
	}
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		orch *orchestrator.Orchestrator
		req  orchestrator.Request
		want string
	}{
		{name: "missing id", orch: orchestrator.New(), req: orchestrator.Request{}, want: "form id is required"},
		{name: "unknown form", orch: orchestrator.New(), req: orchestrator.Request{FormID: "reset"}, want: `form "reset" not found`},
		{name: "unknown renderer", orch: orchestrator.New(), req: orchestrator.Request{FormID: "signin", Renderer: "preact"}, want: `renderer "preact" not found`},
		{
			name: "unknown variant",
			orch: orchestrator.New(orchestrator.WithTheme(nil, "", "sepia")),
			req:  orchestrator.Request{FormID: "signin"},
			want: `no variant "sepia"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.orch.Generate(ctx, tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
