package videogenerator

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// loadBackground returns the opaque base every frame is composited on. A
// background image that can't be loaded leaves the plain colour.
func loadBackground(cfg Config) *image.RGBA {
	dc := gg.NewContext(cfg.Width, cfg.Height)
	setRGBColor(dc, cfg.BackgroundColor)
	dc.Clear()
	base := dc.Image().(*image.RGBA)

	if cfg.BackgroundPath == "" {
		return base
	}

	img, err := gg.LoadImage(cfg.BackgroundPath)
	if err != nil {
		slog.Warn("background image not loaded, using plain background", "path", cfg.BackgroundPath, "error", err)
		return base
	}

	scaled := scaleToCover(img, cfg.Width, cfg.Height)
	alpha := uint8(float64(cfg.Opacity) / 100 * 255)
	xdraw.DrawMask(base, base.Bounds(), scaled, image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, xdraw.Over)
	return base
}

// scaleToCover scales img proportionally so it covers w x h and crops the
// overflow evenly on both sides.
func scaleToCover(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	prop := max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	sw := int(float64(b.Dx())*prop + 0.5)
	sh := int(float64(b.Dy())*prop + 0.5)
	x0 := (w - sw) / 2
	y0 := (h - sh) / 2

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+sw, y0+sh), img, b, xdraw.Src, nil)
	return dst
}
