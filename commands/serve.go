package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"whackerhero/apiserver"
	"whackerhero/videogenerator"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a form to start renders from a browser",
		Long: `Serve an HTML form with the same options as the command line. Renders run
on this machine, one at a time; the render flags given here become the
form's defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			render := func(ctx context.Context, cfg videogenerator.Config) (videogenerator.Result, error) {
				return videogenerator.Generate(ctx, cfg, out)
			}
			return apiserver.Run(ctx, addr, apiserver.New(base, render))
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8888", "listen address")
	return cmd
}
