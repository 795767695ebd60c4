package videogenerator

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// probeAudio checks the audio track. ok is false when the file can't be
// opened, in which case the video is rendered silent. The length is 0 when
// the format can't be measured here; ffmpeg may still be able to mux it.
func probeAudio(path string) (length float64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("audio not found, rendering without sound", "path", path, "error", err)
		return 0, false
	}
	defer f.Close()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		slog.Debug("audio length unknown for this format", "path", path)
		return 0, true
	}
	if err != nil {
		slog.Warn("audio length unknown", "path", path, "error", err)
		return 0, true
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()).Seconds(), true
}
