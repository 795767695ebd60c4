package videogenerator

import (
	"math"
	"sort"

	"whackerhero/midiparser"
)

// Layout turns note events into bars and answers where each bar is at a
// given note time. It holds no state besides what NewLayout computed, so
// every query is independent of the ones before it.
type Layout struct {
	bars   []Bar
	lanes  []int       // pitch of each lane, left to right
	laneOf map[int]int // pitch -> lane

	w, h        float64
	columnWidth float64
	noteWidth   float64
	thickness   float64
	hitline     float64
	hitpoint    float64
	fadepoint   float64
	pps         float64 // pixels per second
	minHeight   float64
}

func NewLayout(notes []midiparser.NoteEvent, cfg Config) *Layout {
	l := &Layout{
		laneOf: map[int]int{},
		w:      float64(cfg.Width),
		h:      float64(cfg.Height),
	}

	valid := make([]midiparser.NoteEvent, 0, len(notes))
	for _, n := range notes {
		if n, ok := sanitizeNote(n, cfg); ok {
			valid = append(valid, n)
		}
	}

	l.lanes = lanePitches(valid, cfg.LaneMode)
	for i, p := range l.lanes {
		l.laneOf[p] = i
	}

	inner := l.w - l.w*sideMargin*2
	l.columnWidth = inner / float64(max(len(l.lanes), 1))
	l.noteWidth = l.columnWidth * noteWidth
	l.hitline = (1 - bottomMargin) * l.h
	// On flat canvases the line would be thicker than the space above it.
	l.thickness = math.Min(l.columnWidth*lineThickness, l.hitline)
	l.hitpoint = l.hitline - l.thickness/2
	l.fadepoint = (1 - bottomMargin/2) * l.h
	l.pps = l.hitpoint / cfg.FallTime
	l.minHeight = l.h * minNoteHeight

	for _, n := range valid {
		l.bars = append(l.bars, Bar{
			Pitch: n.Pitch,
			Lane:  l.laneOf[n.Pitch],
			Color: cfg.Palette.ForPitch(n.Pitch),
			Start: n.Start,
			Stop:  n.Stop(),
		})
	}
	sort.SliceStable(l.bars, func(i, j int) bool {
		if l.bars[i].Lane != l.bars[j].Lane {
			return l.bars[i].Lane < l.bars[j].Lane
		}
		return l.bars[i].Start < l.bars[j].Start
	})

	return l
}

// sanitizeNote clamps negative times and drops notes a lane can't be found
// for. A wrong-looking bar is better than an aborted render.
func sanitizeNote(n midiparser.NoteEvent, cfg Config) (midiparser.NoteEvent, bool) {
	if n.Pitch < 0 || n.Pitch > 127 {
		return n, false
	}
	if cfg.LaneMode == LanesRange && (n.Pitch < cfg.MinPitch || n.Pitch > cfg.MaxPitch) {
		return n, false
	}
	if math.IsNaN(n.Start) || math.IsInf(n.Start, 0) {
		return n, false
	}
	if n.Start < 0 {
		n.Start = 0
	}
	if math.IsNaN(n.Duration) || n.Duration < 0 {
		n.Duration = 0
	}
	if math.IsInf(n.Duration, 1) {
		return n, false
	}
	return n, true
}

func lanePitches(notes []midiparser.NoteEvent, mode LaneMode) []int {
	if len(notes) == 0 {
		return nil
	}

	if mode == LanesRange {
		lo, hi := notes[0].Pitch, notes[0].Pitch
		for _, n := range notes {
			lo = min(lo, n.Pitch)
			hi = max(hi, n.Pitch)
		}
		pitches := make([]int, 0, hi-lo+1)
		for p := lo; p <= hi; p++ {
			pitches = append(pitches, p)
		}
		return pitches
	}

	seen := map[int]bool{}
	var pitches []int
	for _, n := range notes {
		if !seen[n.Pitch] {
			seen[n.Pitch] = true
			pitches = append(pitches, n.Pitch)
		}
	}
	sort.Ints(pitches)
	return pitches
}

func (l *Layout) Bars() []Bar {
	return l.bars
}

// Lanes returns the pitch shown in each lane, left to right.
func (l *Layout) Lanes() []int {
	return l.lanes
}

func (l *Layout) LaneOf(pitch int) (int, bool) {
	lane, ok := l.laneOf[pitch]
	return lane, ok
}

// LaneX is the horizontal centre of a lane.
func (l *Layout) LaneX(lane int) float64 {
	return l.w*sideMargin + (float64(lane)+0.5)*l.columnWidth
}

// Entry is the note time at which the bar's lower edge leaves the top of
// the canvas.
func (l *Layout) Entry(b Bar) float64 {
	return b.Start - l.hitpoint/l.pps
}

// Exit is the note time after which nothing of the bar is drawn: its upper
// edge has passed the fade point and its hit effect is over.
func (l *Layout) Exit(b Bar) float64 {
	below := l.fadepoint - l.hitpoint
	exit := math.Max(b.Stop+below/l.pps, b.Start+(below+l.minHeight)/l.pps)
	return math.Max(exit, b.Start+hitEffectTime)
}

func (l *Layout) Visible(b Bar, t float64) bool {
	return t > l.Entry(b) && t < l.Exit(b)
}

// Geometry evaluates a bar at note time t. Its extent is a linear function
// of t - Start, with a minimum height so zero-length notes still show.
func (l *Layout) Geometry(b Bar, t float64) FallingNote {
	bottom := l.hitpoint + (t-b.Start)*l.pps
	top := l.hitpoint + (t-b.Stop)*l.pps
	if bottom-top < l.minHeight {
		top = bottom - l.minHeight
	}

	var stage float64
	if s := 1 - (t-b.Start)/hitEffectTime; s > 0 && s < 1 {
		stage = s
	}

	return FallingNote{
		Bar:      b,
		X:        l.LaneX(b.Lane),
		Width:    l.noteWidth,
		Top:      top,
		Bottom:   bottom,
		HitStage: stage,
	}
}

// BarsVisibleAt returns every bar on screen at note time t, ordered by lane
// and then by start.
func (l *Layout) BarsVisibleAt(t float64) []FallingNote {
	var visible []FallingNote
	for _, b := range l.bars {
		if l.Visible(b, t) {
			visible = append(visible, l.Geometry(b, t))
		}
	}
	return visible
}
