package midiparser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrNoNotes is returned for files that parse but contain no playable note.
var ErrNoNotes = errors.New("no notes found")

type pressedKey struct {
	track   int
	channel uint8
	key     uint8
}

// Load reads a song from path. Files ending in .json are read as Tone.js
// exports, everything else as a Standard MIDI File.
func Load(path string) (Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return Song{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var song Song
	if strings.EqualFold(filepath.Ext(path), ".json") {
		song, err = ParseToneJSON(f)
	} else {
		song, err = ParseFile(f)
	}
	if err != nil {
		return Song{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return song, nil
}

// ParseFile reads a Standard MIDI File and pairs note-on/note-off messages
// into notes. A key pressed again before it is released keeps its first
// start; keys still held at the end of the file are released there.
func ParseFile(r io.Reader) (Song, error) {
	var notes []NoteEvent
	var lastEvent float64
	pressed := map[pressedKey]float64{}

	rd := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		sec := float64(ev.AbsMicroSeconds) / 1_000_000
		if sec > lastEvent {
			lastEvent = sec
		}

		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteStart(&ch, &key, &vel):
			k := pressedKey{track: ev.TrackNo, channel: ch, key: key}
			if _, down := pressed[k]; !down {
				pressed[k] = sec
			}
		case ev.Message.GetNoteEnd(&ch, &key):
			k := pressedKey{track: ev.TrackNo, channel: ch, key: key}
			if start, down := pressed[k]; down {
				notes = append(notes, NoteEvent{Pitch: int(key), Start: start, Duration: sec - start})
				delete(pressed, k)
			}
		}
	})
	if err := rd.Error(); err != nil {
		return Song{}, fmt.Errorf("read midi: %w", err)
	}

	for k, start := range pressed {
		notes = append(notes, NoteEvent{Pitch: int(k.key), Start: start, Duration: lastEvent - start})
	}

	if len(notes) == 0 {
		return Song{}, ErrNoNotes
	}
	return newSong(notes, lastEvent), nil
}
