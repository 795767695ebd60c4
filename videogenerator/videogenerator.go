package videogenerator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"

	"whackerhero/midiparser"
)

// Plan is a render that is ready to run: the song is parsed, the optional
// assets are checked and the renderer is built.
type Plan struct {
	Config   Config
	Song     midiparser.Song
	Renderer *Renderer
	// AudioPath is empty when there is no usable audio track.
	AudioPath string
}

type Result struct {
	Output   string
	Frames   int
	Duration float64
	Bytes    int64
	Elapsed  time.Duration
}

// Prepare loads everything a render needs. Only the MIDI file is required;
// a missing audio track or background degrades to silence or a plain
// background.
func Prepare(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	song, err := midiparser.Load(cfg.MidiPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("midi loaded", "notes", len(song.Notes), "length", song.Length)

	plan := &Plan{Config: cfg, Song: song}

	var audioLength float64
	if cfg.AudioPath != "" && !cfg.IsGIF() {
		slog.Info("Preparing audio", "path", cfg.AudioPath)
		if length, ok := probeAudio(cfg.AudioPath); ok {
			plan.AudioPath = cfg.AudioPath
			audioLength = length
		}
	}

	layout := NewLayout(song.Notes, cfg)
	timeline := NewTimeline(cfg, song.Length, audioLength)
	plan.Renderer = NewRenderer(cfg, layout, timeline)
	return plan, nil
}

// EncodeSpec describes the ffmpeg run for this plan.
func (p *Plan) EncodeSpec(ffmpegPath string) EncodeSpec {
	tl := p.Renderer.Timeline()
	return EncodeSpec{
		FFmpegPath:  ffmpegPath,
		Output:      p.Config.OutputPath,
		Width:       p.Config.Width,
		Height:      p.Config.Height,
		FPS:         p.Config.FPS,
		Duration:    float64(tl.FrameCount()) / float64(tl.FPS),
		AudioPath:   p.AudioPath,
		AudioOffset: tl.AudioOffset(),
	}
}

// Render pulls frames one at a time and hands them to sink. It stops at the
// first sink error or when ctx is done. The sink is not closed.
func Render(ctx context.Context, r *Renderer, sink FrameSink, progress *Progress) (int, error) {
	written := 0
	for k, img := range r.Frames() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := sink.WriteFrame(img); err != nil {
			return written, fmt.Errorf("frame %d: %w", k, err)
		}
		written++
		progress.Frame(written)
	}
	progress.Done()
	return written, nil
}

// Generate runs a whole render from config to output file.
func Generate(ctx context.Context, cfg Config, progressOut io.Writer) (Result, error) {
	executionStartTime := time.Now()

	plan, err := Prepare(cfg)
	if err != nil {
		return Result{}, err
	}

	var sink FrameSink
	output := cfg.OutputPath
	if cfg.FramesDir != "" {
		output = cfg.FramesDir
		sink, err = NewPNGFramesSink(cfg.FramesDir)
		if err != nil {
			return Result{}, err
		}
	} else {
		if err := checkOutputDir(cfg.OutputPath); err != nil {
			return Result{}, err
		}
		ffmpeg, err := FindFFmpeg(cfg.FFmpegPath)
		if err != nil {
			return Result{}, err
		}
		sink, err = NewFFmpegSink(ctx, plan.EncodeSpec(ffmpeg))
		if err != nil {
			return Result{}, err
		}
	}

	tl := plan.Renderer.Timeline()
	slog.Info("Rendering frames", "output", output, "frames", tl.FrameCount(), "fps", tl.FPS, "from", tl.Start, "seconds", tl.Span)

	frames, err := Render(ctx, plan.Renderer, sink, NewProgress(progressOut, tl.FrameCount()))
	closeErr := sink.Close()
	if err != nil {
		return Result{}, err
	}
	if closeErr != nil {
		return Result{}, closeErr
	}

	res := Result{
		Output:   output,
		Frames:   frames,
		Duration: float64(frames) / float64(tl.FPS),
		Elapsed:  time.Since(executionStartTime),
	}
	if st, err := os.Stat(cfg.OutputPath); err == nil && cfg.FramesDir == "" {
		res.Bytes = st.Size()
	}
	return res, nil
}

// Snapshot renders the single frame at video time at into a PNG file,
// without the video fade.
func Snapshot(cfg Config, at float64, out string) error {
	cfg.Preview = false
	cfg.Fade = false
	cfg.OutputPath = out
	cfg.FramesDir = ""
	plan, err := Prepare(cfg)
	if err != nil {
		return err
	}
	if err := checkOutputDir(out); err != nil {
		return err
	}
	img := plan.Renderer.RenderAt(at)
	if err := gg.NewContextForRGBA(img).SavePNG(out); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// checkOutputDir fails fast when the output can't be written, before any
// frame is rendered.
func checkOutputDir(path string) error {
	dir := filepath.Dir(path)
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output folder: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("output folder %s is not a directory", dir)
	}
	return nil
}
