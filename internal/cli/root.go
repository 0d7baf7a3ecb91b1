// Package cli wires the fx application behind each streamflix command.
package cli

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configFile string
}

func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "streamflix",
		Short: "Outbox and saga workers for the streamflix backend",
		Long: `streamflix runs the transactional outbox and saga processors and
offers admin commands that enqueue work for them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Config file (defaults to CONFIG_FILE)")

	rootCmd.AddCommand(
		newWorkerCmd(flags),
		newMigrateCmd(flags),
		newMovieCmd(flags),
		newSubscriptionCmd(flags),
	)
	return rootCmd
}
