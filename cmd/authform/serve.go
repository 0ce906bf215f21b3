package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-authform/internal/config"
	"github.com/goliatone/go-authform/pkg/metrics"
	"github.com/goliatone/go-authform/pkg/server"
)

func newServeCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forms over HTTP",
		Long: `Serve every form as an HTML page with JSON negotiation, plus the
/api/validate and /api/strength endpoints and Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, deps)
		},
	}
	cmd.Flags().String(config.KeyAddr, config.DefaultAddr, "listen address")
	return cmd
}

func runServe(cmd *cobra.Command, deps Deps) error {
	a, err := newApp(cmd, deps)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.orch.Forms(ctx)
	if err != nil {
		return err
	}
	palette, err := a.orch.Palette()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(store,
		server.WithLogger(a.logger),
		server.WithPalette(palette),
		server.WithSubmitter(a.submitter()),
		server.WithMetrics(metrics.New(reg), reg),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, a.cfg.Addr)
}
