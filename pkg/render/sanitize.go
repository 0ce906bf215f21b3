package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// SanitizeText strips every tag from a message so backend or theme supplied
// strings render as plain text. Entities are decoded again because the
// template layer escapes on output.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(trimmed)))
}

// SanitizeTexts applies SanitizeText and drops entries that end up empty.
func SanitizeTexts(raw []string) []string {
	var out []string
	for _, message := range raw {
		if cleaned := SanitizeText(message); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// SanitizeIcon keeps a small SVG subset so theme icons can be inlined.
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "line", "polyline", "title")
		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"focusable",
		).OnElements("svg")
		for _, el := range []string{"path", "circle", "line", "polyline"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x1", "y1", "x2", "y2", "points",
				"fill", "stroke", "stroke-width",
			).OnElements(el)
		}
		iconPolicy = policy
	})
	return iconPolicy
}
