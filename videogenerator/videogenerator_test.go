package videogenerator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectSink struct {
	frames []*image.RGBA
	failAt int
	closed bool
}

func (s *collectSink) WriteFrame(img *image.RGBA) error {
	if s.failAt > 0 && len(s.frames) == s.failAt {
		return errors.New("disk full")
	}
	s.frames = append(s.frames, img)
	return nil
}

func (s *collectSink) Close() error {
	s.closed = true
	return nil
}

// writeSong writes a Tone.js export with one note per pitch, a second apart.
func writeSong(t *testing.T, dir string, pitches ...int) string {
	t.Helper()
	var notes []string
	for i, p := range pitches {
		notes = append(notes, `{"midi":`+strconv.Itoa(p)+`,"time":`+strconv.Itoa(i)+`,"duration":0.5}`)
	}
	path := filepath.Join(dir, "song.json")
	doc := `{"tracks":[{"notes":[` + strings.Join(notes, ",") + `]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func pipelineConfig(t *testing.T) Config {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.MidiPath = writeSong(t, dir, 60, 64, 67)
	cfg.OutputPath = filepath.Join(dir, "out.mp4")
	return cfg
}

func TestPrepareAndRender(t *testing.T) {
	cfg := pipelineConfig(t)

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Len(t, plan.Song.Notes, 3)
	assert.InDelta(t, 2.5, plan.Song.Length, 1e-9)

	sink := &collectSink{}
	n, err := Render(context.Background(), plan.Renderer, sink, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	require.Len(t, sink.frames, 25)
	assert.Equal(t, image.Rect(0, 0, 320, 180), sink.frames[0].Bounds())
}

func TestRenderStopsOnSinkError(t *testing.T) {
	plan, err := Prepare(pipelineConfig(t))
	require.NoError(t, err)

	n, err := Render(context.Background(), plan.Renderer, &collectSink{failAt: 3}, nil)
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 3, n)
}

func TestRenderStopsOnCancel(t *testing.T) {
	plan, err := Prepare(pipelineConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := Render(ctx, plan.Renderer, &collectSink{}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestPrepareMissingMidiFails(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.MidiPath = filepath.Join(t.TempDir(), "nope.mid")

	_, err := Prepare(cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrepareMissingAudioRendersSilent(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.AudioPath = filepath.Join(t.TempDir(), "missing.wav")

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Empty(t, plan.AudioPath)
	assert.Empty(t, plan.EncodeSpec("ffmpeg").AudioPath)
}

func TestPrepareKeepsUnmeasurableAudio(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.AudioPath = filepath.Join(t.TempDir(), "song.ogg")
	require.NoError(t, os.WriteFile(cfg.AudioPath, []byte("OggS"), 0o644))

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.AudioPath, plan.AudioPath)
}

func TestMissingBackgroundFallsBackToColor(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.BackgroundPath = filepath.Join(t.TempDir(), "missing.png")
	cfg.BackgroundColor = Color{0, 0, 1}

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, plan.Renderer.base.RGBAAt(0, 0))
}

func TestBackgroundImageIsBlended(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	bgPath := filepath.Join(dir, "bg.png")
	f, err := os.Create(bgPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfg := pipelineConfig(t)
	cfg.BackgroundPath = bgPath
	cfg.Opacity = 50

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	px := plan.Renderer.base.RGBAAt(160, 90)
	assert.InDelta(t, 127, int(px.R), 2)
	assert.Equal(t, uint8(255), px.A)
}

func TestGenerateFramesDir(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.FramesDir = filepath.Join(t.TempDir(), "_frames")
	cfg.Preview = true
	cfg.PreviewStart = 1
	cfg.PreviewLength = 0.5

	var progress bytes.Buffer
	res, err := Generate(context.Background(), cfg, &progress)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Frames)
	assert.Equal(t, cfg.FramesDir, res.Output)

	files, err := filepath.Glob(filepath.Join(cfg.FramesDir, "fr*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 5)
	assert.FileExists(t, filepath.Join(cfg.FramesDir, "fr00001.png"))

	lines := strings.Fields(progress.String())
	require.NotEmpty(t, lines)
	assert.Equal(t, "100", lines[len(lines)-1])
}

func TestGenerateUnwritableOutputFailsFast(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.OutputPath = filepath.Join(t.TempDir(), "missing", "out.mp4")

	_, err := Generate(context.Background(), cfg, nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSnapshot(t *testing.T) {
	cfg := pipelineConfig(t)
	out := filepath.Join(t.TempDir(), "snap.png")

	require.NoError(t, Snapshot(cfg, 1.2, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 180), img.Bounds())
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("songs", "minuet.mp4"), DefaultOutputPath(filepath.Join("songs", "minuet.mid"), ".mp4"))
}

func TestSnapshotIgnoresVideoFade(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Fade = true
	out := filepath.Join(t.TempDir(), "snap.png")

	require.NoError(t, Snapshot(cfg, 0, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r|g|bl != 0 {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
}
