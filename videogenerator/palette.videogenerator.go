package videogenerator

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds one colour per pitch class, C first.
type Palette [12]Color

func DefaultPalette() Palette {
	p, err := ParsePalette(boomwhackerColors[:])
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePalette reads twelve hex colours, with or without a leading '#'.
func ParsePalette(hexes []string) (Palette, error) {
	var p Palette
	if len(hexes) != len(p) {
		return p, fmt.Errorf("palette needs %d colours, got %d", len(p), len(hexes))
	}
	for i, h := range hexes {
		c, err := ParseHexColor(h)
		if err != nil {
			return p, fmt.Errorf("palette colour %d (%s): %w", i, noteNames[i], err)
		}
		p[i] = c
	}
	return p, nil
}

func ParseHexColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return Color(c), nil
}

// LoadGPL reads a GIMP palette. The first twelve colours are used.
func LoadGPL(path string) (Palette, error) {
	var p Palette

	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && n < len(p) {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") ||
			strings.HasPrefix(line, "Name:") || strings.HasPrefix(line, "Columns") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		r, err1 := strconv.Atoi(fields[0])
		g, err2 := strconv.Atoi(fields[1])
		b, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		p[n] = Color{float64(r) / 255, float64(g) / 255, float64(b) / 255}
		n++
	}
	if err := scanner.Err(); err != nil {
		return p, err
	}
	if n < len(p) {
		return p, fmt.Errorf("palette %s has %d colours, need %d", path, n, len(p))
	}
	return p, nil
}

func (p Palette) ForPitch(pitch int) Color {
	return p[pitchClass(pitch)]
}

func pitchClass(pitch int) int {
	return ((pitch % 12) + 12) % 12
}

// towards blends c towards other by amount (0..1).
func (c Color) towards(other Color, amount float64) Color {
	return Color(colorful.Color(c).BlendRgb(colorful.Color(other), amount))
}
