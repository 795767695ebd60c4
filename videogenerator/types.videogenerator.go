package videogenerator

import "image"

type Color struct {
	R float64
	G float64
	B float64
}

type ScreenResolution [2]int

// Bar is the falling rectangle of one note. Start and Stop are in note time,
// the seconds of the MIDI file.
type Bar struct {
	Pitch int
	Lane  int
	Color Color
	Start float64
	Stop  float64
}

// FallingNote is a Bar evaluated at one moment: its horizontal centre, its
// vertical extent in pixels and how far its hit effect has faded.
type FallingNote struct {
	Bar
	X      float64
	Width  float64
	Top    float64
	Bottom float64
	// HitStage is 1 the instant the bar touches the hit line and falls to 0
	// over hitEffectTime. Zero means no effect.
	HitStage float64
}

// FrameSink consumes rendered frames in order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}
