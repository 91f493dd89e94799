package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brave-tools/brave-updater/internal/config"
	"github.com/brave-tools/brave-updater/internal/logger"
	"github.com/brave-tools/brave-updater/internal/service/updater"
	"github.com/brave-tools/brave-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// target is the installation directory override.
	target string
	// suffix is the asset filename suffix override.
	suffix string
	// logLevel selects the minimum log level.
	logLevel string

	// rootCmd represents the base command that performs one update pass.
	rootCmd = &cobra.Command{
		Use:   "brave-updater",
		Short: "Keep a local Brave installation in sync with the newest published release",
		Long: `Self-updating installer for the Brave browser.

Reads the installed version marker from the target directory, resolves the
newest published release carrying an asset that matches the suffix filter,
and when the two differ downloads the zip archive, extracts it into a
staging directory next to the target, stamps the version marker, and
atomically swaps the staging directory into place.

The run is a single pass: it either reports that the installation is
current or performs the upgrade, and exits non-zero on any failure.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath: configPath,
				Target:     target,
				Suffix:     suffix,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the brave-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	attachSelfUpdateCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&target, "target", "t", "",
		"installation directory (default: $HOME/usr/brave)")
	rootCmd.Flags().StringVarP(&suffix, "suffix", "s", "",
		"asset filename suffix filter (default: "+config.DefaultSuffix+")")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to optional configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
}
