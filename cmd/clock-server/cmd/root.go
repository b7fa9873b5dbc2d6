package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mapler/socialclock/internal/config"
	"github.com/mapler/socialclock/internal/service/server"
	"github.com/mapler/socialclock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the clock server.
	rootCmd = &cobra.Command{
		Use:   "clock-server [listen-address]",
		Short: "Run the social alarm clock server.",
		Long: `Starts the alarm clock server that arms wake-up alarms, records alarm
events and serves the HTTP API.

The server listens on the configured address or the address given as an
argument (e.g., :9090, 0.0.0.0:8080). Events are stored in Postgres when a
database URL is configured, otherwise in memory. Settings come from the
YAML file plus CLOCK_* environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the clock-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
