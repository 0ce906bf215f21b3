// Package jsonview renders a controller snapshot as JSON for script-driven
// clients.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/render"
)

// Name is the registry name of this renderer.
const Name = "json"

// Document is the JSON payload. Page carries the sanitized view used by the
// HTML renderer; Valid mirrors form.View.Valid.
type Document struct {
	Page  render.Page `json:"page"`
	Valid bool        `json:"valid"`
}

// Renderer emits Document values.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	doc := Document{
		Page:  render.BuildPage(view, options),
		Valid: view.Valid(),
	}
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return out, nil
}
