package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/renderers/tui"
)

func newPromptCmd(deps Deps, formID, short string) *cobra.Command {
	return &cobra.Command{
		Use:   formID,
		Short: short,
		Long: fmt.Sprintf(`Prompt for every field of the %q form with the same validation
rules as the web pages, then submit to the configured backend.`, formID),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrompt(cmd, deps, formID)
		},
	}
}

func runPrompt(cmd *cobra.Command, deps Deps, formID string) error {
	a, err := newApp(cmd, deps)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := a.orch.Forms(ctx)
	if err != nil {
		return err
	}
	def, ok := store.Form(formID)
	if !ok {
		return fmt.Errorf("form %q is not defined", formID)
	}

	navigated := make(chan string, 1)
	ctrl, err := form.New(def,
		form.WithSubmitter(a.submitter()),
		form.WithLogger(a.logger),
		form.WithNavigator(form.NavigatorFunc(func(target string) {
			select {
			case navigated <- target:
			default:
			}
		})),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	session, err := tui.NewSession(ctrl,
		tui.WithOutput(out),
		tui.WithPromptDriver(a.deps.PromptDriverFactory(out)),
	)
	if err != nil {
		return err
	}

	view, err := session.Run(ctx)
	switch {
	case errors.Is(err, tui.ErrAborted):
		fmt.Fprintln(out, "Cancelled.")
		return nil
	case err != nil:
		return err
	}

	if view.Redirect == "" {
		return nil
	}
	select {
	case target := <-navigated:
		fmt.Fprintf(out, "Continue at %s\n", target)
	case <-ctx.Done():
	}
	return nil
}
