package videogenerator

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Renderer rasterizes frames. The background and the static layer are built
// once; each frame starts from copies of them.
type Renderer struct {
	cfg      Config
	layout   *Layout
	timeline Timeline

	base   *image.RGBA // opaque background
	static *image.RGBA // lane lines, hit line and letters on transparent
}

func NewRenderer(cfg Config, layout *Layout, timeline Timeline) *Renderer {
	r := &Renderer{
		cfg:      cfg,
		layout:   layout,
		timeline: timeline,
		base:     loadBackground(cfg),
	}
	r.static = r.drawStatic()
	return r
}

func (r *Renderer) Timeline() Timeline {
	return r.timeline
}

func (r *Renderer) Layout() *Layout {
	return r.layout
}

func setRGBColor(dc *gg.Context, c Color) {
	dc.SetRGB(c.R, c.G, c.B)
}

func setRGBAColor(dc *gg.Context, c Color, a float64) {
	dc.SetRGBA(c.R, c.G, c.B, a)
}

func (r *Renderer) drawStatic() *image.RGBA {
	l := r.layout
	dc := gg.NewContext(r.cfg.Width, r.cfg.Height)

	fontSize := math.Min(l.columnWidth/1.5, l.h*bottomMargin/4)
	if r.cfg.ShowText && fontSize >= 1 {
		dc.SetFontFace(loadFace(r.cfg.FontPath, fontSize))
	}

	for lane, pitch := range l.lanes {
		c := r.cfg.Palette.ForPitch(pitch)
		x := l.LaneX(lane)

		dc.DrawRectangle(x-l.thickness/2, 0, l.thickness, l.fadepoint-1)
		setRGBAColor(dc, c, lineOpacity)
		dc.Fill()

		if r.cfg.ShowText && fontSize >= 1 {
			setRGBColor(dc, c)
			dc.DrawStringAnchored(noteNames[pitchClass(pitch)], x, (1-bottomMargin/4)*l.h, 0.5, 0.5)
		}
	}

	dc.DrawRectangle(0, l.hitline-l.thickness/2, l.w, l.thickness)
	setRGBAColor(dc, white, lineOpacity)
	dc.Fill()

	return dc.Image().(*image.RGBA)
}

func drawFallingNotes(dc *gg.Context, l *Layout, notes []FallingNote) {
	for _, n := range notes {
		c := n.Color
		if n.HitStage > 0 {
			c = c.towards(white, n.HitStage/2)
		}

		bottom := math.Min(l.fadepoint, n.Bottom)
		if n.Bottom > 0 && n.Top < l.fadepoint && bottom > n.Top {
			radius := math.Min(fallingNoteBorderRadius, n.Width/4)
			dc.DrawRoundedRectangle(n.X-n.Width/2, n.Top, n.Width, bottom-n.Top, radius)
			setRGBColor(dc, c)
			dc.Fill()
		}

		if n.HitStage > 0 {
			s := n.HitStage * n.HitStage
			w := l.columnWidth - (l.columnWidth-l.noteWidth)*s
			h := l.thickness + 2*l.thickness*s
			dc.DrawRectangle(n.X-w/2, l.hitline-h/2, w, h)
			setRGBAColor(dc, white, s)
			dc.Fill()
		}
	}
}

// fadeBelowHitline makes the layer fade out linearly between the hit line
// and the fade point. Pixels are premultiplied, so all four channels scale.
func fadeBelowHitline(img *image.RGBA, l *Layout) {
	from := int(l.hitline)
	to := min(int(l.fadepoint), img.Bounds().Dy())
	if to <= from {
		return
	}
	for y := max(from, 0); y < to; y++ {
		keep := 1 - float64(y-from)/float64(to-from)
		row := img.Pix[y*img.Stride : y*img.Stride+img.Bounds().Dx()*4]
		for i := range row {
			row[i] = uint8(float64(row[i]) * keep)
		}
	}
}

// videoFade is the brightness of the whole frame at video time v: ramping
// up over the first second of the full video and down over the last. A
// preview cut from the middle shows no fade.
func (r *Renderer) videoFade(v float64) float64 {
	if !r.cfg.Fade {
		return 1
	}
	f := math.Min(v/fadeTime, (r.timeline.Total-v)/fadeTime)
	return math.Max(0, math.Min(1, f))
}

// RenderAt draws the frame for video time v.
func (r *Renderer) RenderAt(v float64) *image.RGBA {
	layer := cloneRGBA(r.static)
	dc := gg.NewContextForRGBA(layer)
	drawFallingNotes(dc, r.layout, r.layout.BarsVisibleAt(r.timeline.NoteTime(v)))
	fadeBelowHitline(layer, r.layout)

	frame := cloneRGBA(r.base)
	xdraw.Draw(frame, frame.Bounds(), layer, image.Point{}, xdraw.Over)

	if f := r.videoFade(v); f < 1 {
		for i := 0; i < len(frame.Pix); i += 4 {
			frame.Pix[i] = uint8(float64(frame.Pix[i]) * f)
			frame.Pix[i+1] = uint8(float64(frame.Pix[i+1]) * f)
			frame.Pix[i+2] = uint8(float64(frame.Pix[i+2]) * f)
		}
	}
	return frame
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
