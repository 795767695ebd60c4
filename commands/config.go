package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"whackerhero/videogenerator"
)

// fileConfig is the YAML form of a render configuration. Pointer fields
// tell "unset" apart from a zero value.
type fileConfig struct {
	Size       string   `yaml:"size"`
	FPS        *int     `yaml:"fps"`
	Speed      *float64 `yaml:"speed"`
	LeadIn     *float64 `yaml:"lead_in"`
	Tail       *float64 `yaml:"tail"`
	Duration   *float64 `yaml:"duration"`
	Opacity    *int     `yaml:"opacity"`
	Text       *bool    `yaml:"text"`
	Fade       *bool    `yaml:"fade"`
	Audio      string   `yaml:"audio"`
	Image      string   `yaml:"image"`
	Font       string   `yaml:"font"`
	FFmpeg     string   `yaml:"ffmpeg"`
	Palette    []string `yaml:"palette"`
	Background string   `yaml:"background_color"`
	Lanes      string   `yaml:"lanes"`
	MinPitch   *int     `yaml:"min_pitch"`
	MaxPitch   *int     `yaml:"max_pitch"`
	Preview    struct {
		Start  *float64 `yaml:"start"`
		Length *float64 `yaml:"length"`
	} `yaml:"preview"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.DisallowUnknownField()); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *videogenerator.Config) error {
	if fc.Size != "" {
		w, h, err := videogenerator.ParseSize(fc.Size)
		if err != nil {
			return err
		}
		cfg.Width, cfg.Height = w, h
	}
	setIf(&cfg.FPS, fc.FPS)
	setIf(&cfg.FallTime, fc.Speed)
	setIf(&cfg.LeadIn, fc.LeadIn)
	setIf(&cfg.Tail, fc.Tail)
	setIf(&cfg.Duration, fc.Duration)
	setIf(&cfg.Opacity, fc.Opacity)
	setIf(&cfg.ShowText, fc.Text)
	setIf(&cfg.Fade, fc.Fade)
	setIf(&cfg.MinPitch, fc.MinPitch)
	setIf(&cfg.MaxPitch, fc.MaxPitch)
	setIf(&cfg.PreviewStart, fc.Preview.Start)
	setIf(&cfg.PreviewLength, fc.Preview.Length)

	if fc.Audio != "" {
		cfg.AudioPath = fc.Audio
	}
	if fc.Image != "" {
		cfg.BackgroundPath = fc.Image
	}
	if fc.Font != "" {
		cfg.FontPath = fc.Font
	}
	if fc.FFmpeg != "" {
		cfg.FFmpegPath = fc.FFmpeg
	}
	if fc.Lanes != "" {
		cfg.LaneMode = videogenerator.LaneMode(fc.Lanes)
	}
	if len(fc.Palette) > 0 {
		p, err := videogenerator.ParsePalette(fc.Palette)
		if err != nil {
			return err
		}
		cfg.Palette = p
	}
	if fc.Background != "" {
		c, err := videogenerator.ParseHexColor(fc.Background)
		if err != nil {
			return fmt.Errorf("background_color: %w", err)
		}
		cfg.BackgroundColor = c
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "YAML file with render settings")
	f.StringP("audio", "a", "", "audio track to mux into the video")
	f.StringP("image", "i", "", "background image")
	f.BoolP("preview", "p", false, "render only a 10 second preview")
	f.StringP("size", "s", "1280x720", "video size, WIDTHxHEIGHT or 480p/720p/1080p")
	f.Int("fps", 30, "frames per second")
	f.Float64("speed", 10, "seconds a bar takes to fall to the hit line")
	f.Int("opacity", 30, "background visibility, 0-100")
	f.Bool("no-text", false, "don't draw note names under the lanes")
	f.String("font", "", "TrueType font for the note names")
	f.String("palette", "", "GIMP .gpl palette or 12 comma-separated hex colours")
	f.String("lanes", string(videogenerator.LanesUsed), "lane layout: used or range")
	f.String("ffmpeg", "", "ffmpeg binary (default: from PATH)")
	f.String("frames-dir", "", "write numbered PNG frames here instead of a video")
}

// buildConfig layers defaults, the optional config file and the flags the
// user set, in that order.
func buildConfig(cmd *cobra.Command) (videogenerator.Config, error) {
	cfg := videogenerator.DefaultConfig()
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		fc, err := loadFileConfig(path)
		if err != nil {
			return cfg, err
		}
		if err := fc.apply(&cfg); err != nil {
			return cfg, err
		}
	}

	var err error
	if flags.Changed("size") {
		s, _ := flags.GetString("size")
		if cfg.Width, cfg.Height, err = videogenerator.ParseSize(s); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("fps") {
		cfg.FPS, _ = flags.GetInt("fps")
	}
	if flags.Changed("speed") {
		cfg.FallTime, _ = flags.GetFloat64("speed")
	}
	if flags.Changed("opacity") {
		cfg.Opacity, _ = flags.GetInt("opacity")
	}
	if flags.Changed("audio") {
		cfg.AudioPath, _ = flags.GetString("audio")
	}
	if flags.Changed("image") {
		cfg.BackgroundPath, _ = flags.GetString("image")
	}
	if flags.Changed("font") {
		cfg.FontPath, _ = flags.GetString("font")
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpegPath, _ = flags.GetString("ffmpeg")
	}
	if flags.Changed("lanes") {
		lanes, _ := flags.GetString("lanes")
		cfg.LaneMode = videogenerator.LaneMode(lanes)
	}
	if noText, _ := flags.GetBool("no-text"); noText {
		cfg.ShowText = false
	}
	if preview, _ := flags.GetBool("preview"); preview {
		cfg.Preview = true
	}
	cfg.FramesDir, _ = flags.GetString("frames-dir")

	if s, _ := flags.GetString("palette"); s != "" {
		if cfg.Palette, err = loadPalette(s); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func loadPalette(s string) (videogenerator.Palette, error) {
	if strings.HasSuffix(strings.ToLower(s), ".gpl") {
		return videogenerator.LoadGPL(s)
	}
	return videogenerator.ParsePalette(strings.Split(s, ","))
}
