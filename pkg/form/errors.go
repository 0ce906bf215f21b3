package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/goliatone/go-authform/pkg/model"
)

// Error codes attached to submission failures.
const (
	CodeSubmitFailed   = "AUTH_SUBMIT_FAILED"
	CodeSubmitRejected = "AUTH_SUBMIT_REJECTED"
)

var (
	// ErrInvalid is returned by Submit when at least one field blocks the
	// submission. The submitter is not called.
	ErrInvalid = errors.New("form: invalid fields")
	// ErrSubmitInProgress is returned when Submit is called while a previous
	// submission is still loading.
	ErrSubmitInProgress = errors.New("form: submission in progress")
	// ErrUnknownField is returned by event methods for names the form does
	// not define.
	ErrUnknownField = errors.New("form: unknown field")
)

// RejectedError reports a backend that answered but refused the submission.
type RejectedError struct {
	Status int
	Fields map[string][]string
	Form   []string
}

func (e *RejectedError) Error() string {
	if len(e.Form) > 0 {
		return fmt.Sprintf("form: rejected with status %d: %s", e.Status, strings.Join(e.Form, "; "))
	}
	return fmt.Sprintf("form: rejected with status %d", e.Status)
}

// ErrorCode returns the oops code carried by err, or "" when err was not
// produced by a submitter.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok || oopsErr.Code() == nil {
		return ""
	}
	return fmt.Sprint(oopsErr.Code())
}

// ErrorMapping splits a backend error payload into field-level and
// form-level messages keyed by field name.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises backend error payloads (including JSON pointer
// paths such as "/body/email") into the field names of form. Unknown paths
// are treated as form-level errors so messages are not lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			names[name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		name, formLevel := mapErrorPath(rawPath, names)
		if formLevel {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, names map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := dropWrapperSegments(stripNumericSegments(parsePathSegments(trimmed)))
	if len(segments) == 0 {
		return "", true
	}
	if _, ok := names[segments[0]]; ok {
		return segments[0], false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		switch strings.ToLower(out[0]) {
		case "body", "request", "payload", "data", "attributes":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
