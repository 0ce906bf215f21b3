package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-authform/internal/config"
	"github.com/goliatone/go-authform/pkg/model"
)

// NewRootCmd creates the root command for the authform CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(Deps{})
}

func newRootCmd(deps Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "authform",
		Short: "Sign-in and sign-up forms for the web and the terminal",
		Long: `authform renders the sign-in and sign-up screens with live field
validation, a password strength meter and transient notifications. Forms come
from the built-in definitions, a directory of YAML files, or OpenAPI
operations annotated with x-authform.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newPromptCmd(deps, model.FormSignIn, "Sign in from the terminal"))
	cmd.AddCommand(newPromptCmd(deps, model.FormSignUp, "Create an account from the terminal"))
	cmd.AddCommand(newRenderCmd(deps))
	cmd.AddCommand(newCheckCmd(deps))

	return cmd
}
