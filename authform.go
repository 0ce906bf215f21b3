// Package authform is the top-level entry point: it re-exports the pieces
// most callers need to load the auth screens and render them.
package authform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/orchestrator"
	"github.com/goliatone/go-authform/pkg/render"
	"github.com/goliatone/go-authform/pkg/renderers/vanilla"
	"github.com/goliatone/go-authform/pkg/uischema"
)

// FormModel aliases model.FormModel.
type FormModel = model.FormModel

// RenderOptions describes per-request data such as hidden fields and
// form-level errors.
type RenderOptions = render.RenderOptions

// View aliases the controller snapshot consumed by renderers.
type View = form.View

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// LoadForms resolves the embedded definitions plus any configured overlays
// and OpenAPI imports.
func LoadForms(ctx context.Context, options ...orchestrator.Option) (*uischema.Store, error) {
	return orchestrator.New(options...).Forms(ctx)
}

// GenerateHTML renders the initial state of formID with the vanilla
// renderer.
func GenerateHTML(ctx context.Context, formID string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		FormID:   formID,
		Renderer: vanilla.Name,
	})
}

// EmbeddedTemplates exposes the vanilla renderer templates so callers can
// copy or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet. Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(authform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
