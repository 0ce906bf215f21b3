// Package vanilla renders auth screens as server-side HTML with no client
// script. Interactions that need a round trip (password visibility,
// notification dismissal, the alternate sign-in button) are named submit
// buttons; see ToggleFieldName, DismissFieldName and AlternateFieldName.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/render"
	rendertemplate "github.com/goliatone/go-authform/pkg/render/template"
	"github.com/goliatone/go-authform/pkg/render/template/pongo"
)

// Name is the registry name of this renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/page.tmpl and templates/field.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links an external stylesheet and stops inlining the
// bundled one.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
		if cfg.stylesheet != "" {
			cfg.inlineStyles = false
		}
	}
}

// WithoutInlineStyles renders bare markup.
func WithoutInlineStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = false
	}
}

// Renderer turns a form.View into a full HTML document.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	stylesheet   string
	inlineStyles string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), inlineStyles: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	r := &Renderer{templates: renderer, stylesheet: cfg.stylesheet}
	if cfg.inlineStyles {
		r.inlineStyles = stylesheet
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	page := render.BuildPage(view, options)
	classes := chromeClasses()

	fields := make([]string, 0, len(page.Fields))
	for _, field := range page.Fields {
		html, err := r.templates.RenderTemplate("templates/field", map[string]any{
			"field":        field,
			"classes":      classes,
			"fieldClass":   fieldClass(field),
			"messageClass": messageClass(field),
			"toggleName":   ToggleFieldName,
			"iconEye":      page.IconEye,
		})
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render field %q: %w", field.Name, err)
		}
		fields = append(fields, html)
	}

	result, err := r.templates.RenderTemplate("templates/page", map[string]any{
		"page":              page,
		"fields":            fields,
		"classes":           classes,
		"formId":            page.FormID + "-form",
		"notificationClass": notificationClass(page.Notification),
		"dismissName":       DismissFieldName,
		"alternateName":     AlternateFieldName,
		"stylesheet":        r.stylesheet,
		"inlineStyles":      r.inlineStyles,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
