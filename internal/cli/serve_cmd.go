package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic SLA sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("serve is not available in this build")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx)
		},
	}
}
