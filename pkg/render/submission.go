package render

import (
	"fmt"
	"sort"
	"strings"
)

// ReturnToField is the hidden input carrying the post-success destination.
const ReturnToField = "return_to"

// HiddenField is a hidden form input emitted alongside the visible fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. Callers
// supply the input name to match their backend expectations (for example,
// "_csrf" or "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// ReturnTo constructs the hidden field naming where a successful submission
// should land.
func ReturnTo(target string) HiddenField {
	return Hidden(ReturnToField, target)
}

// NormalizeHiddenFields drops unnamed entries, keeps the last value for a
// repeated name and sorts by name for deterministic rendering.
func NormalizeHiddenFields(fields ...HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		clean[name] = field.Value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: clean[name]})
	}
	return out
}
