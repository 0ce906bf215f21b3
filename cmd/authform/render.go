package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-authform/pkg/orchestrator"
	"github.com/goliatone/go-authform/pkg/renderers/vanilla"
)

type renderConfig struct {
	renderer string
	output   string
}

func newRenderCmd(deps Deps) *cobra.Command {
	cfg := &renderConfig{}

	cmd := &cobra.Command{
		Use:   "render <form>",
		Short: "Render the initial state of a form",
		Long: `Render a form as a standalone HTML page (vanilla) or as the JSON page
document (json) and write it to stdout or a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, deps, cfg, args[0])
		},
	}
	cmd.Flags().StringVar(&cfg.renderer, "renderer", vanilla.Name, "renderer name (vanilla or json)")
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func runRender(cmd *cobra.Command, deps Deps, cfg *renderConfig, formID string) error {
	a, err := newApp(cmd, deps)
	if err != nil {
		return err
	}
	out, err := a.orch.Generate(cmd.Context(), orchestrator.Request{
		FormID:   formID,
		Renderer: cfg.renderer,
	})
	if err != nil {
		return err
	}

	if cfg.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", cfg.output)
	return err
}
