package videogenerator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrBadSize        = errors.New("size must look like WIDTHxHEIGHT")
	ErrNoExtension    = errors.New("output file name needs an extension")
	ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")
)

type LaneMode string

const (
	// LanesUsed gives every pitch that occurs in the song its own lane.
	LanesUsed LaneMode = "used"
	// LanesRange gives every semitone between the lowest and highest
	// played pitch a lane, so the layout reads like a keyboard.
	LanesRange LaneMode = "range"
)

// Config is everything one render needs. It is built once by a front end
// and passed by value; nothing below it changes it.
type Config struct {
	MidiPath   string
	OutputPath string
	// FramesDir, when set, receives numbered PNG frames instead of a video.
	FramesDir string

	AudioPath      string
	BackgroundPath string
	FontPath       string
	FFmpegPath     string

	Width  int
	Height int
	FPS    int

	// FallTime is how long a bar takes from the top of the canvas to the
	// hit line.
	FallTime float64
	// LeadIn is the video time at which the song starts. Negative means
	// FallTime, so the first note has fallen in before it sounds.
	LeadIn float64
	Tail   float64
	// Duration overrides the computed video length when positive.
	Duration float64

	Preview bool
	// PreviewStart is a video time. Negative means 10s after the lead-in.
	PreviewStart  float64
	PreviewLength float64

	Opacity         int // background visibility, 0-100
	ShowText        bool
	Fade            bool
	Palette         Palette
	BackgroundColor Color

	LaneMode LaneMode
	MinPitch int
	MaxPitch int
}

func DefaultConfig() Config {
	return Config{
		Width:           defaultResolution[0],
		Height:          defaultResolution[1],
		FPS:             30,
		FallTime:        10,
		LeadIn:          -1,
		Tail:            4,
		PreviewStart:    -1,
		PreviewLength:   10,
		Opacity:         30,
		ShowText:        true,
		Fade:            true,
		Palette:         DefaultPalette(),
		BackgroundColor: black,
		LaneMode:        LanesUsed,
		MinPitch:        0,
		MaxPitch:        127,
	}
}

func (c Config) EffectiveLeadIn() float64 {
	if c.LeadIn < 0 {
		return c.FallTime
	}
	return c.LeadIn
}

func (c Config) EffectivePreviewStart() float64 {
	if c.PreviewStart < 0 {
		return c.EffectiveLeadIn() + previewOffset
	}
	return c.PreviewStart
}

// IsGIF reports whether the output is an animated GIF.
func (c Config) IsGIF() bool {
	return strings.EqualFold(filepath.Ext(c.OutputPath), ".gif")
}

// Validate checks the fields a render can't do without. Paths to optional
// assets are not checked here; missing ones are dropped with a warning.
func (c Config) Validate() error {
	if c.MidiPath == "" {
		return errors.New("input midi file is required")
	}
	if c.FramesDir == "" {
		if c.OutputPath == "" {
			return errors.New("output file is required")
		}
		if filepath.Ext(c.OutputPath) == "" {
			return fmt.Errorf("%s: %w", c.OutputPath, ErrNoExtension)
		}
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%dx%d: %w", c.Width, c.Height, ErrBadSize)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.FallTime <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.FallTime)
	}
	if c.Opacity < 0 || c.Opacity > 100 {
		return fmt.Errorf("opacity must be between 0 and 100, got %d", c.Opacity)
	}
	if c.Preview && c.PreviewLength <= 0 {
		return fmt.Errorf("preview length must be positive, got %g", c.PreviewLength)
	}
	switch c.LaneMode {
	case LanesUsed, LanesRange:
	default:
		return fmt.Errorf("unknown lane mode %q", c.LaneMode)
	}
	if c.MinPitch < 0 || c.MaxPitch > 127 || c.MinPitch > c.MaxPitch {
		return fmt.Errorf("pitch range %d..%d is outside 0..127", c.MinPitch, c.MaxPitch)
	}
	return nil
}

// ParseSize reads "WIDTHxHEIGHT" or a named resolution such as "720p".
func ParseSize(s string) (int, int, error) {
	if r, ok := namedResolutions[strings.ToLower(s)]; ok {
		return r[0], r[1], nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", s, ErrBadSize)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(ws))
	h, errH := strconv.Atoi(strings.TrimSpace(hs))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%q: %w", s, ErrBadSize)
	}
	return w, h, nil
}
