package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmconfig/cmd/ssmconfig/commands"
	"github.com/systmms/ssmconfig/internal/config"
	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/systmms/ssmconfig/internal/logging"
	"github.com/systmms/ssmconfig/internal/metrics"
	"github.com/systmms/ssmconfig/internal/providers"
	"github.com/systmms/ssmconfig/pkg/configstore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	a := newApp()
	defer a.shutdown()
	return a.root.Execute()
}

// app holds the root command and what it starts. cobra skips
// PersistentPostRun when RunE fails, so shutdown runs from run instead.
type app struct {
	root          *cobra.Command
	metricsServer *metrics.Server
}

func newApp() *app {
	var (
		configFile  string
		noColor     bool
		debug       bool
		metricsAddr string
	)

	a := &app{}
	cfg := &config.Config{}

	newRegistry := func(logger *logging.Logger) *configstore.Registry {
		return providers.NewRegistry(
			providers.WithLogger(logger),
			providers.WithMetrics(metrics.Default()),
		)
	}

	rootCmd := &cobra.Command{
		Use:   "ssmconfig",
		Short: "Read AWS SSM Parameter Store hierarchies as flat configuration",
		Long: `ssmconfig fetches every parameter below a Parameter Store path, following
pagination to the end, and prints the result as one flat document.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)

			if metricsAddr != "" {
				serverConfig := metrics.DefaultServerConfig()
				serverConfig.Addr = metricsAddr
				metrics.Default()
				a.metricsServer = metrics.NewServer(serverConfig, nil, cfg.Logger)
				if err := a.metricsServer.Start(); err != nil {
					return fmt.Errorf("failed to start metrics server: %w", err)
				}
				cfg.Logger.Debug("Serving metrics on %s", a.metricsServer.Addr())
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "ssmconfig.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(
		commands.NewGetCommand(cfg, newRegistry),
		commands.NewStoresCommand(cfg, newRegistry),
		commands.NewValidateCommand(cfg, newRegistry),
	)

	a.root = rootCmd
	return a
}

// shutdown stops the metrics server if one was started. Safe to call twice.
func (a *app) shutdown() {
	if a.metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.metricsServer.Stop(ctx)
	a.metricsServer = nil
}
