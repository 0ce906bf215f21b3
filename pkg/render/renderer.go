package render

import (
	"context"

	"github.com/goliatone/go-authform/pkg/form"
)

// Renderer converts a controller snapshot into a byte representation (HTML,
// JSON, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view form.View, options RenderOptions) ([]byte, error)
}
