package midiparser

import "sort"

// NoteEvent is a single sounded note, in seconds from the start of the file.
type NoteEvent struct {
	Pitch    int     `json:"pitch"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Stop is the moment the note is released.
func (n NoteEvent) Stop() float64 {
	return n.Start + n.Duration
}

// Song is everything the renderer needs from a MIDI file.
type Song struct {
	Notes []NoteEvent `json:"notes"`
	// Length is the time of the last event in the file, end-of-track included.
	Length float64 `json:"length"`
}

func newSong(notes []NoteEvent, lastEvent float64) Song {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})

	length := lastEvent
	for _, n := range notes {
		if n.Stop() > length {
			length = n.Stop()
		}
	}

	return Song{Notes: notes, Length: length}
}
