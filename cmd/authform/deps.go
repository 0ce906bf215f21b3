package main

import (
	"io"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/renderers/tui"
)

// Deps contains injectable dependencies for the commands. Nil fields use
// their default implementations.
type Deps struct {
	// PromptDriverFactory builds the driver used by signin and signup.
	// Default: tui.NewSurveyDriver
	PromptDriverFactory func(out io.Writer) tui.PromptDriver

	// Submitter overrides the backend chosen from the configuration.
	// Default: form.HTTPSubmitter when --backend is set, otherwise
	// form.SimulatedSubmitter.
	Submitter form.Submitter
}

func (d Deps) withDefaults() Deps {
	if d.PromptDriverFactory == nil {
		d.PromptDriverFactory = tui.NewSurveyDriver
	}
	return d
}
