package videogenerator

import (
	"log/slog"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// loadFace loads the custom font if there is one and falls back to Go
// Regular, which is compiled in.
func loadFace(path string, size float64) font.Face {
	if path != "" {
		face, err := gg.LoadFontFace(path, size)
		if err == nil {
			return face
		}
		slog.Warn("font not loaded, using Go Regular", "path", path, "error", err)
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}
