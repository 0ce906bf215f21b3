package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-authform/internal/config"
	"github.com/goliatone/go-authform/internal/logging"
	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/openapi"
	"github.com/goliatone/go-authform/pkg/orchestrator"
)

const serviceName = "authform"

// app is the state shared by every command once flags are resolved.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	orch   *orchestrator.Orchestrator
	deps   Deps
}

func newApp(cmd *cobra.Command, deps Deps) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(serviceName, cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	options := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithTheme(nil, cfg.Theme, cfg.Variant),
	}
	if cfg.Forms != "" {
		info, err := os.Stat(cfg.Forms)
		if err != nil {
			return nil, fmt.Errorf("forms directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("forms directory: %s is not a directory", cfg.Forms)
		}
		options = append(options, orchestrator.WithOverlayFS(os.DirFS(cfg.Forms)))
	}
	if len(cfg.OpenAPI) > 0 {
		options = append(options, orchestrator.WithLoader(openapi.NewLoader(openapi.WithHTTPFallback(cfg.SubmitTimeout))))
		for _, location := range cfg.OpenAPI {
			src, err := openapi.ParseSource(location)
			if err != nil {
				return nil, err
			}
			options = append(options, orchestrator.WithOpenAPISource(src))
		}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		orch:   orchestrator.New(options...),
		deps:   deps,
	}, nil
}

func (a *app) submitter() form.Submitter {
	if a.deps.Submitter != nil {
		return a.deps.Submitter
	}
	if a.cfg.Backend == "" {
		return &form.SimulatedSubmitter{}
	}
	return &form.HTTPSubmitter{
		BaseURL: a.cfg.Backend,
		Client:  &http.Client{Timeout: a.cfg.SubmitTimeout},
	}
}
