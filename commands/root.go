package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"whackerhero/videogenerator"
)

var doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffe5")).Bold(true)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whackerhero [flags] <midi> [dest]",
		Short: "Render a MIDI file as a falling-note Boomwhacker video",
		Long: `whackerhero turns a MIDI arrangement into a falling-note video overlay
for Boomwhacker practice. Each pitch gets a coloured lane; bars fall
towards a hit line and reach it when the note sounds.

The destination's extension picks the format: .gif writes an animated
GIF without audio, anything else (.mp4, .mkv, .webm) an H.264 video.
When dest is omitted the video is written next to the MIDI file.

Examples:
  whackerhero song.mid
  whackerhero -a song.mp3 -i stage.jpg song.mid song.mp4
  whackerhero --preview --size 480p song.mid preview.gif
  whackerhero --frames-dir frames/ song.mid`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), cmd)
		},
		RunE: runRender,
	}

	addRenderFlags(cmd)
	cmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func setupLogging(w io.Writer, cmd *cobra.Command) {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.MidiPath = args[0]
	if len(args) > 1 {
		cfg.OutputPath = args[1]
	} else if cfg.FramesDir == "" {
		cfg.OutputPath = videogenerator.DefaultOutputPath(cfg.MidiPath, ".mp4")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := videogenerator.Generate(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), res)
	return nil
}

func printSummary(w io.Writer, res videogenerator.Result) {
	fmt.Fprintln(w, doneStyle.Render("Done"), res.Output)
	fmt.Fprintf(w, "  frames:   %d (%.1fs)\n", res.Frames, res.Duration)
	if res.Bytes > 0 {
		fmt.Fprintf(w, "  size:     %s\n", humanize.Bytes(uint64(res.Bytes)))
	}
	fmt.Fprintf(w, "  elapsed:  %s\n", res.Elapsed.Round(10*time.Millisecond))
}
