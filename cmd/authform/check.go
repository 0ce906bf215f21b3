package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-authform/pkg/model"
)

type checkConfig struct {
	jsonOutput bool
}

func newCheckCmd(deps Deps) *cobra.Command {
	cfg := &checkConfig{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate form definitions and OpenAPI imports",
		Long: `Load the built-in definitions, the --forms directory and every --openapi
document, report problems, and list the resulting forms.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, deps, cfg)
		},
	}
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "print the resolved forms as JSON")
	return cmd
}

func runCheck(cmd *cobra.Command, deps Deps, cfg *checkConfig) error {
	a, err := newApp(cmd, deps)
	if err != nil {
		return err
	}
	store, err := a.orch.Forms(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := a.orch.Palette(); err != nil {
		return err
	}

	forms := make([]model.FormModel, 0, len(store.IDs()))
	for _, id := range store.IDs() {
		def, _ := store.Form(id)
		forms = append(forms, def)
	}

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(forms, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), formatFormsTable(forms))
	return err
}

func formatFormsTable(forms []model.FormModel) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORM\tENDPOINT\tFIELDS\tREQUIRED")
	for _, def := range forms {
		var names, required []string
		for _, field := range def.Fields {
			names = append(names, field.Name)
			if field.Required {
				required = append(required, field.Name)
			}
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
			def.ID,
			def.Method,
			def.Endpoint,
			strings.Join(names, ","),
			strings.Join(required, ","),
		)
	}
	_ = w.Flush()
	return sb.String()
}
