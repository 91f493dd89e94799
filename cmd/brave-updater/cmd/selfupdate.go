package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brave-tools/brave-updater/internal/service/selfupdate"
)

// attachSelfUpdateCommand adds the `selfupdate` subcommand, which replaces
// the running brave-updater binary with its newest published release.
func attachSelfUpdateCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "selfupdate",
		Short: "Update the updater itself to its newest published release",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return selfupdate.Run(ctx, &selfupdate.Options{})
		},
	})
}
