package videogenerator

import (
	"image"
	"iter"
	"math"
)

// Timeline maps frame numbers to video time and video time to note time.
type Timeline struct {
	FPS int
	// LeadIn is the video time of note time 0, and of the audio start.
	LeadIn float64
	// Total is the length of the full video.
	Total float64
	// Start and Span select the part that is rendered: all of it, or the
	// preview window.
	Start float64
	Span  float64
}

// NewTimeline works out the video length: the lead-in, the song and a tail,
// stretched to the audio if that is longer. An explicit Duration wins.
func NewTimeline(cfg Config, songLength, audioLength float64) Timeline {
	tl := Timeline{FPS: cfg.FPS, LeadIn: cfg.EffectiveLeadIn()}

	if cfg.Duration > 0 {
		tl.Total = cfg.Duration
	} else {
		tl.Total = tl.LeadIn + songLength + cfg.Tail
		tl.Total = math.Max(tl.Total, tl.LeadIn+audioLength)
	}

	tl.Span = tl.Total
	if cfg.Preview {
		start := cfg.EffectivePreviewStart()
		if start >= tl.Total {
			start = math.Max(0, tl.Total-cfg.PreviewLength)
		}
		tl.Start = start
		tl.Span = math.Min(cfg.PreviewLength, tl.Total-start)
	}
	return tl
}

func (tl Timeline) FrameCount() int {
	if tl.Span <= 0 || tl.FPS <= 0 {
		return 0
	}
	return int(math.Ceil(tl.Span*float64(tl.FPS) - 1e-9))
}

// FrameTime is the video time of frame k.
func (tl Timeline) FrameTime(k int) float64 {
	return tl.Start + float64(k)/float64(tl.FPS)
}

func (tl Timeline) NoteTime(videoTime float64) float64 {
	return videoTime - tl.LeadIn
}

// AudioOffset is where the audio starts relative to the first rendered
// frame. It is negative when a preview starts after the audio does.
func (tl Timeline) AudioOffset() float64 {
	return tl.LeadIn - tl.Start
}

// Frame renders frame k. Frames don't depend on each other, so any frame can
// be rendered at any time and always comes out the same.
func (r *Renderer) Frame(k int) *image.RGBA {
	return r.RenderAt(r.timeline.FrameTime(k))
}

// Frames yields every frame in order, rendering each one only when it is
// pulled. The sequence can be ranged over more than once.
func (r *Renderer) Frames() iter.Seq2[int, *image.RGBA] {
	return func(yield func(int, *image.RGBA) bool) {
		n := r.timeline.FrameCount()
		for k := 0; k < n; k++ {
			if !yield(k, r.Frame(k)) {
				return
			}
		}
	}
}
