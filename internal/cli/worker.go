package cli

import (
	"github.com/Sokol111/streamflix-reliability/pkg/http/health"
	"github.com/Sokol111/streamflix-reliability/pkg/http/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newWorkerCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the outbox and saga processors",
		Long: `Run the outbox and saga processors until interrupted.

Health probes are served on /health/live and /health/ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(workerModules(flags))
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func workerModules(flags *globalFlags) fx.Option {
	return fx.Options(
		domainModules(flags, true),
		server.NewHTTPServerModule(),
		health.NewHealthRoutesModule(),
	)
}
