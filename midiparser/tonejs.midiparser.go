package midiparser

import (
	"encoding/json"
	"fmt"
	"io"
)

// ToneJSON is the subset of the @tonejs/midi JSON export that carries notes.
type ToneJSON struct {
	Header struct {
		Name   string `json:"name"`
		Ppq    int    `json:"ppq"`
		Tempos []struct {
			Bpm   float64 `json:"bpm"`
			Ticks int     `json:"ticks"`
		} `json:"tempos"`
	} `json:"header"`
	Tracks []struct {
		Channel    int `json:"channel"`
		Instrument struct {
			Family string `json:"family"`
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"instrument"`
		Name  string `json:"name"`
		Notes []struct {
			Duration      float64 `json:"duration"`
			DurationTicks int     `json:"durationTicks"`
			Midi          int     `json:"midi"`
			Name          string  `json:"name"`
			Ticks         int     `json:"ticks"`
			Time          float64 `json:"time"`
			Velocity      float64 `json:"velocity"`
		} `json:"notes"`
		EndOfTrackTicks int `json:"endOfTrackTicks"`
	} `json:"tracks"`
}

// ParseToneJSON reads a song exported by Tone.js. Note times there are
// already in seconds.
func ParseToneJSON(r io.Reader) (Song, error) {
	var doc ToneJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Song{}, fmt.Errorf("decode tone.js json: %w", err)
	}

	var notes []NoteEvent
	for _, track := range doc.Tracks {
		for _, n := range track.Notes {
			notes = append(notes, NoteEvent{Pitch: n.Midi, Start: n.Time, Duration: n.Duration})
		}
	}
	if len(notes) == 0 {
		return Song{}, ErrNoNotes
	}
	return newSong(notes, 0), nil
}
