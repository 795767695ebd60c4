package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X whackerhero/commands.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "whackerhero %s (%s) %s/%s\n", Version, Commit, runtime.GOOS, runtime.GOARCH)
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", runtime.Version())
			}
		},
	}
}
