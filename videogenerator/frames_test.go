package videogenerator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whackerhero/midiparser"
)

func newTestRenderer(t *testing.T, cfg Config, notes []midiparser.NoteEvent, songLength float64) *Renderer {
	t.Helper()
	l := NewLayout(notes, cfg)
	return NewRenderer(cfg, l, NewTimeline(cfg, songLength, 0))
}

func TestSingleNoteScenario(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 4
	cfg.FallTime = 1
	notes := []midiparser.NoteEvent{{Pitch: 60, Start: 2, Duration: 1}}
	r := newTestRenderer(t, cfg, notes, 3)

	tl := r.Timeline()
	require.Equal(t, 40, tl.FrameCount())

	n := 0
	for range r.Frames() {
		n++
	}
	assert.Equal(t, 40, n)

	empty := r.Frame(0).Pix
	bar := r.Layout().Bars()[0]
	sawBar := false
	for k := 0; k < tl.FrameCount(); k++ {
		at := tl.NoteTime(tl.FrameTime(k))
		visible := r.Layout().BarsVisibleAt(at)
		if at < r.Layout().Entry(bar) {
			assert.Empty(t, visible, "frame %d", k)
			assert.True(t, bytes.Equal(empty, r.Frame(k).Pix), "frame %d should show no bar", k)
			continue
		}
		if at > r.Layout().Entry(bar) && at < r.Layout().Exit(bar) {
			require.Len(t, visible, 1, "frame %d", k)
			lane, _ := r.Layout().LaneOf(60)
			assert.Equal(t, lane, visible[0].Lane)
			if visible[0].Bottom > 1 && visible[0].Top < r.Layout().hitline {
				sawBar = true
				assert.False(t, bytes.Equal(empty, r.Frame(k).Pix), "frame %d should show the bar", k)
			}
		}
	}
	assert.True(t, sawBar)
}

func TestFrameIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.Fade = true
	r := newTestRenderer(t, cfg, []midiparser.NoteEvent{
		{Pitch: 60, Start: 1, Duration: 1},
		{Pitch: 65, Start: 1.5, Duration: 0},
	}, 3)

	for _, k := range []int{0, 7, 15, 22} {
		a := r.Frame(k)
		b := r.Frame(k)
		assert.True(t, bytes.Equal(a.Pix, b.Pix), "frame %d", k)
	}

	// Rendering out of order gives the same pixels as in order.
	var inOrder [][]byte
	for _, img := range r.Frames() {
		inOrder = append(inOrder, img.Pix)
	}
	for k := len(inOrder) - 1; k >= 0; k-- {
		assert.True(t, bytes.Equal(inOrder[k], r.Frame(k).Pix), "frame %d", k)
	}
}

func TestFramesIsRestartableAndStopsEarly(t *testing.T) {
	cfg := testConfig()
	r := newTestRenderer(t, cfg, []midiparser.NoteEvent{{Pitch: 60, Start: 0, Duration: 1}}, 2)

	count := func() int {
		n := 0
		for range r.Frames() {
			n++
		}
		return n
	}
	assert.Equal(t, 20, count())
	assert.Equal(t, 20, count())

	n := 0
	for k := range r.Frames() {
		if k == 4 {
			break
		}
		n++
	}
	assert.Equal(t, 4, n)
}

func TestTimeline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 30

	tl := NewTimeline(cfg, 60, 0)
	assert.Equal(t, 10.0, tl.LeadIn)
	assert.Equal(t, 74.0, tl.Total)
	assert.Equal(t, 74*30, tl.FrameCount())
	assert.Equal(t, 0.0, tl.NoteTime(10))
	assert.Equal(t, 10.0, tl.AudioOffset())

	// Longer audio stretches the video.
	tl = NewTimeline(cfg, 60, 90)
	assert.Equal(t, 100.0, tl.Total)

	cfg.Duration = 12.5
	tl = NewTimeline(cfg, 60, 90)
	assert.Equal(t, 12.5, tl.Total)
	assert.Equal(t, 375, tl.FrameCount())
}

func TestPreviewTruncatesFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 24
	cfg.Preview = true

	tl := NewTimeline(cfg, 60, 0)
	assert.Equal(t, 20.0, tl.Start)
	assert.LessOrEqual(t, tl.FrameCount(), 10*24)
	assert.Equal(t, 10*24, tl.FrameCount())
	assert.Equal(t, -10.0, tl.AudioOffset())
	assert.Equal(t, 20.0, tl.FrameTime(0))

	// A song shorter than the preview start previews its end.
	tl = NewTimeline(cfg, 3, 0)
	assert.Equal(t, 17.0, tl.Total)
	assert.Equal(t, 7.0, tl.Start)
	assert.Equal(t, 10*24, tl.FrameCount())

	cfg.PreviewStart = 70
	cfg.PreviewLength = 8
	tl = NewTimeline(cfg, 60, 0)
	assert.Equal(t, 70.0, tl.Start)
	assert.Equal(t, 4*24, tl.FrameCount())
}

func TestVideoFade(t *testing.T) {
	cfg := testConfig()
	cfg.Fade = true
	cfg.Duration = 4
	r := newTestRenderer(t, cfg, nil, 0)

	assert.Equal(t, 0.0, r.videoFade(0))
	assert.InDelta(t, 0.5, r.videoFade(0.5), 1e-9)
	assert.Equal(t, 1.0, r.videoFade(2))
	assert.InDelta(t, 0.5, r.videoFade(3.5), 1e-9)
}

func TestPreviewHasNoFadeInTheMiddle(t *testing.T) {
	cfg := testConfig()
	cfg.Fade = true
	cfg.Duration = 4
	cfg.Preview = true
	cfg.PreviewStart = 1
	cfg.PreviewLength = 1
	r := newTestRenderer(t, cfg, nil, 0)

	require.Equal(t, 1.0, r.Timeline().Start)
	assert.Equal(t, 1.0, r.videoFade(1))
	assert.Equal(t, 1.0, r.videoFade(2))
	assert.InDelta(t, 0.5, r.videoFade(0.5), 1e-9)
	assert.InDelta(t, 0.5, r.videoFade(3.5), 1e-9)
}
