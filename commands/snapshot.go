package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"whackerhero/videogenerator"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot [flags] <midi> <out.png>",
		Short: "Render a single frame as PNG",
		Long: `Render the frame at one point of the video and save it as PNG, to check
colours, size and background before a full render.

Examples:
  whackerhero snapshot --at 12.5 song.mid frame.png
  whackerhero snapshot --at 3 -i stage.jpg --opacity 60 song.mid frame.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			cfg.MidiPath = args[0]
			at, _ := cmd.Flags().GetFloat64("at")
			if err := videogenerator.Snapshot(cfg, at, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("Saved"), args[1])
			return nil
		},
	}
	cmd.Flags().Float64("at", 0, "video time of the frame, in seconds")
	return cmd
}
