package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/goliatone/go-authform/internal/logging"
	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/openapi"
	"github.com/goliatone/go-authform/pkg/render"
	"github.com/goliatone/go-authform/pkg/renderers/jsonview"
	"github.com/goliatone/go-authform/pkg/renderers/vanilla"
	"github.com/goliatone/go-authform/pkg/uischema"
)

const defaultRendererName = vanilla.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithUISchemaFS replaces the embedded definitions. Pass nil to start from
// an empty store.
func WithUISchemaFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.baseFS = fsys
		o.baseSpecified = true
	}
}

// WithOverlayFS merges definitions from fsys over the base set. Forms with
// the same id replace the base ones.
func WithOverlayFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		if fsys != nil {
			o.overlays = append(o.overlays, fsys)
		}
	}
}

// WithOpenAPISource imports every x-authform operation of the document at
// src. Imported forms replace definitions with the same id.
func WithOpenAPISource(src openapi.Source, options ...openapi.ParseOption) Option {
	return func(o *Orchestrator) {
		o.sources = append(o.sources, openAPIImport{source: src, options: options})
	}
}

// WithLoader injects the loader used for OpenAPI sources.
func WithLoader(loader *openapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.defaultRenderer = name
		}
	}
}

// WithTheme selects a theme and variant from set. A nil set uses the
// built-in manifest.
func WithTheme(set *render.ThemeSet, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themes = set
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type openAPIImport struct {
	source  openapi.Source
	options []openapi.ParseOption
}

// Orchestrator resolves the form store once and renders forms from it.
type Orchestrator struct {
	baseFS          fs.FS
	baseSpecified   bool
	overlays        []fs.FS
	sources         []openAPIImport
	loader          *openapi.Loader
	registry        *render.Registry
	defaultRenderer string
	themes          *render.ThemeSet
	themeName       string
	themeVariant    string
	logger          *slog.Logger

	mu    sync.Mutex
	store *uischema.Store
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// embedded definitions, the vanilla and json renderers and the default
// theme.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          logging.Discard(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if !o.baseSpecified {
		o.baseFS = uischema.EmbeddedFS()
	}
	if o.loader == nil {
		o.loader = openapi.NewLoader()
	}
	return o
}

// Forms loads and merges every configured source. The result is cached
// after the first successful call.
func (o *Orchestrator) Forms(ctx context.Context) (*uischema.Store, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.store != nil {
		return o.store, nil
	}

	store, err := uischema.NewStore()
	if err != nil {
		return nil, err
	}
	if o.baseFS != nil {
		base, err := uischema.LoadFS(o.baseFS)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load base definitions: %w", err)
		}
		if err := store.Merge(base, true); err != nil {
			return nil, err
		}
	}
	for _, overlay := range o.overlays {
		extra, err := uischema.LoadFS(overlay)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load overlay definitions: %w", err)
		}
		if err := store.Merge(extra, true); err != nil {
			return nil, err
		}
	}
	for _, imp := range o.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := o.loader.Load(ctx, imp.source)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load document: %w", err)
		}
		forms, err := openapi.Forms(ctx, doc, imp.options...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: import %s: %w", doc.Location(), err)
		}
		imported, err := uischema.NewStore(forms...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: import %s: %w", doc.Location(), err)
		}
		if err := store.Merge(imported, true); err != nil {
			return nil, err
		}
		o.logger.Debug("imported openapi forms",
			slog.String("source", doc.Location()),
			slog.Int("forms", len(forms)),
		)
	}
	if store.Empty() {
		return nil, errors.New("orchestrator: no form definitions configured")
	}

	o.store = store
	return store, nil
}

// Palette resolves the configured theme.
func (o *Orchestrator) Palette() (render.Palette, error) {
	set := o.themes
	if set == nil {
		var err error
		set, err = render.NewThemeSet()
		if err != nil {
			return render.Palette{}, err
		}
	}
	selection, err := set.Select(o.themeName, o.themeVariant)
	if err != nil {
		return render.Palette{}, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return render.ResolvePalette(selection), nil
}

// Registry returns the configured registry, building the default one on
// first use.
func (o *Orchestrator) Registry() (*render.Registry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.registry != nil {
		return o.registry, nil
	}
	html, err := vanilla.New()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: vanilla renderer: %w", err)
	}
	registry, err := render.NewRegistry(html, jsonview.New())
	if err != nil {
		return nil, err
	}
	o.registry = registry
	return registry, nil
}

// Request selects a form and renderer for Generate.
type Request struct {
	FormID string
	// Renderer names the renderer to use; empty uses the default.
	Renderer string
	// Values prefill the inputs without validating them.
	Values map[string]string
	// RenderOptions carries hidden fields, an action override and form-level
	// errors. Its Palette is replaced by the configured theme.
	RenderOptions render.RenderOptions
}

// Generate renders the initial state of a form.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if req.FormID == "" {
		return nil, errors.New("orchestrator: form id is required")
	}
	store, err := o.Forms(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := store.Form(req.FormID)
	if !ok {
		return nil, fmt.Errorf("orchestrator: form %q not found", req.FormID)
	}

	registry, err := o.Registry()
	if err != nil {
		return nil, err
	}
	name := req.Renderer
	if name == "" {
		name = o.defaultRenderer
	}
	renderer, err := registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	palette, err := o.Palette()
	if err != nil {
		return nil, err
	}

	ctrl, err := form.New(def, form.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	defer ctrl.Close()
	if len(req.Values) > 0 {
		ctrl.Fill(req.Values)
	}

	opts := req.RenderOptions
	opts.Palette = palette
	output, err := renderer.Render(ctx, ctrl.Snapshot(), opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}
