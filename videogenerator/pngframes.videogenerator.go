package videogenerator

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

// PNGFramesSink writes each frame to dir as fr00001.png, fr00002.png, ...
// which ffmpeg reads back with -i dir/fr%05d.png.
type PNGFramesSink struct {
	dir string
	n   int
}

func NewPNGFramesSink(dir string) (*PNGFramesSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames folder: %w", err)
	}
	return &PNGFramesSink{dir: dir}, nil
}

func (s *PNGFramesSink) WriteFrame(img *image.RGBA) error {
	s.n++
	path := filepath.Join(s.dir, fmt.Sprintf("fr%05d.png", s.n))
	if err := gg.NewContextForRGBA(img).SavePNG(path); err != nil {
		return fmt.Errorf("save frame %d: %w", s.n, err)
	}
	return nil
}

func (s *PNGFramesSink) Close() error {
	return nil
}

// Written is the number of frames saved so far.
func (s *PNGFramesSink) Written() int {
	return s.n
}
