package template

import (
	"io"
)

// TemplateRenderer executes a named template with data and returns the
// output, also copying it to every writer in out. Names carry no extension;
// the engine appends its own.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// Func adapts a plain function to TemplateRenderer, which keeps test doubles
// and alternative engines small.
type Func func(name string, data any) (string, error)

// RenderTemplate calls f and writes the result to out.
func (f Func) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	rendered, err := f(name, data)
	if err != nil {
		return "", err
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, err
		}
	}
	return rendered, nil
}
