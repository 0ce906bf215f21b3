package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the bundled theme.
const DefaultThemeName = "authform"

// Token keys understood by the bundled templates.
const (
	TokenPrimary        = "color.primary"
	TokenSurface        = "color.surface"
	TokenText           = "color.text"
	TokenMuted          = "color.muted"
	TokenSuccess        = "color.success"
	TokenError          = "color.error"
	TokenStrengthWeak   = "color.strength.weak"
	TokenStrengthFair   = "color.strength.fair"
	TokenStrengthGood   = "color.strength.good"
	TokenStrengthStrong = "color.strength.strong"
	TokenRadius         = "radius"
	TokenIconClose      = "icon.close"
	TokenIconEye        = "icon.eye"
)

// DefaultTokens are applied beneath every selected theme.
func DefaultTokens() map[string]string {
	return map[string]string{
		TokenPrimary:        "#4f46e5",
		TokenSurface:        "#ffffff",
		TokenText:           "#111827",
		TokenMuted:          "#6b7280",
		TokenSuccess:        "#10b981",
		TokenError:          "#ef4444",
		TokenStrengthWeak:   "#ef4444",
		TokenStrengthFair:   "#f59e0b",
		TokenStrengthGood:   "#3b82f6",
		TokenStrengthStrong: "#10b981",
		TokenRadius:         "8px",
		TokenIconClose:      `<svg width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2"><line x1="18" y1="6" x2="6" y2="18"></line><line x1="6" y1="6" x2="18" y2="18"></line></svg>`,
		TokenIconEye:        `<svg width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2"><path d="M1 12s4-8 11-8 11 8 11 8-4 8-11 8-11-8-11-8z"></path><circle cx="12" cy="12" r="3"></circle></svg>`,
	}
}

// DefaultManifest describes the bundled theme with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens:  DefaultTokens(),
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					TokenSurface: "#111827",
					TokenText:    "#f9fafb",
					TokenMuted:   "#9ca3af",
				},
			},
		},
	}
}

// ThemeSet is a static theme.ThemeSelector over a fixed list of manifests.
type ThemeSet struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ThemeSet)(nil)

// NewThemeSet registers manifests. The first manifest answers selections
// with an empty name; without any, DefaultManifest is used.
func NewThemeSet(manifests ...*theme.Manifest) (*ThemeSet, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	set := &ThemeSet{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
			return nil, fmt.Errorf("render: theme manifest name is required")
		}
		if _, dup := set.manifests[manifest.Name]; dup {
			return nil, fmt.Errorf("render: theme %q registered twice", manifest.Name)
		}
		set.manifests[manifest.Name] = manifest
		if set.fallback == "" {
			set.fallback = manifest.Name
		}
	}
	return set, nil
}

// Select implements theme.ThemeSelector. Unknown variants are an error; an
// empty variant selects the base tokens.
func (s *ThemeSet) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(name) == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Names lists registered theme names.
func (s *ThemeSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette is a resolved theme ready for templates.
type Palette struct {
	Theme   string            `json:"theme"`
	Variant string            `json:"variant,omitempty"`
	Tokens  map[string]string `json:"tokens"`
	// CSSVars maps "--color-primary" style names to token values. Icon
	// tokens are not exported as variables.
	CSSVars map[string]string `json:"cssVars"`
}

// ResolvePalette layers DefaultTokens, the manifest tokens and the selected
// variant's tokens. A nil selection yields the defaults.
func ResolvePalette(selection *theme.Selection) Palette {
	tokens := DefaultTokens()
	palette := Palette{Theme: DefaultThemeName}
	if selection != nil {
		palette.Theme = selection.Theme
		palette.Variant = selection.Variant
		if manifest := selection.Manifest; manifest != nil {
			mergeTokens(tokens, manifest.Tokens)
			if variant, ok := manifest.Variants[selection.Variant]; ok {
				mergeTokens(tokens, variant.Tokens)
			}
		}
	}
	palette.Tokens = tokens
	palette.CSSVars = cssVars(tokens)
	return palette
}

// Token returns a token value, falling back to DefaultTokens for palettes
// built by hand.
func (p Palette) Token(key string) string {
	if value, ok := p.Tokens[key]; ok {
		return value
	}
	return DefaultTokens()[key]
}

// Style renders CSSVars as a deterministic inline declaration list.
func (p Palette) Style() string {
	vars := p.CSSVars
	if len(vars) == 0 {
		vars = cssVars(DefaultTokens())
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func mergeTokens(dst, src map[string]string) {
	for key, value := range src {
		if strings.TrimSpace(value) == "" {
			continue
		}
		dst[key] = value
	}
}

func cssVars(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		if strings.HasPrefix(key, "icon.") {
			continue
		}
		out["--"+strings.ReplaceAll(key, ".", "-")] = value
	}
	return out
}
