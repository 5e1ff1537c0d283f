package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/caseymeehan/mess-o-midi/pkg/music"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrMalformed is returned when a file parses but its notes cannot be paired
var ErrMalformed = errors.New("malformed midi")

// Score is the note content of a decoded MIDI file
type Score struct {
	Resolution  uint16
	Tempo       float64
	Numerator   uint8
	Denominator uint8
	Events      []Event      // note events in file order, absolute ticks
	Notes       []music.Note // paired notes in note-on order
	EndTick     uint32       // absolute tick of the last track event
}

type noteKey struct {
	channel int
	pitch   int
}

// DecodeFile reads and decodes a MIDI file from disk
func DecodeFile(path string) (*Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read MIDI file: %w", ErrIO, err)
	}
	return Decode(data)
}

// Decode parses SMF data and pairs note-on/note-off events per (channel, pitch), first in first out
func Decode(data []byte) (*Score, error) {
	if !IsMIDI(data) {
		return nil, fmt.Errorf("%w: missing MThd header", ErrMalformed)
	}
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse MIDI: %w", ErrMalformed, err)
	}

	score := &Score{
		Resolution:  DefaultResolution,
		Tempo:       DefaultTempo,
		Numerator:   4,
		Denominator: 4,
	}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		score.Resolution = mt.Resolution()
	}

	for _, track := range s.Tracks {
		var absTick uint32
		for _, ev := range track {
			absTick += ev.Delta

			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				score.Tempo = bpm
			}

			var num, denom, cpt, dsq uint8
			if ev.Message.GetMetaTimeSig(&num, &denom, &cpt, &dsq) {
				score.Numerator = num
				score.Denominator = denom
			}

			var channel, key, velocity uint8
			switch {
			case ev.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				score.Events = append(score.Events, Event{
					Kind: NoteOn, Channel: int(channel), Pitch: int(key), Velocity: int(velocity), Tick: absTick,
				})
			case ev.Message.GetNoteOn(&channel, &key, &velocity):
				// note-on with velocity 0 releases the note
				score.Events = append(score.Events, Event{
					Kind: NoteOff, Channel: int(channel), Pitch: int(key), Tick: absTick,
				})
			case ev.Message.GetNoteOff(&channel, &key, &velocity):
				score.Events = append(score.Events, Event{
					Kind: NoteOff, Channel: int(channel), Pitch: int(key), Velocity: int(velocity), Tick: absTick,
				})
			}
		}
		if absTick > score.EndTick {
			score.EndTick = absTick
		}
	}

	notes, err := pairNotes(score.Events)
	if err != nil {
		return nil, err
	}
	score.Notes = notes
	return score, nil
}

func pairNotes(events []Event) ([]music.Note, error) {
	pending := make(map[noteKey][]int)
	var notes []music.Note

	for _, ev := range events {
		k := noteKey{channel: ev.Channel, pitch: ev.Pitch}
		switch ev.Kind {
		case NoteOn:
			pending[k] = append(pending[k], len(notes))
			notes = append(notes, music.Note{Pitch: ev.Pitch, On: ev.Tick})
		case NoteOff:
			open := pending[k]
			if len(open) == 0 {
				// stray note-off, nothing sounding
				continue
			}
			notes[open[0]].Off = ev.Tick
			pending[k] = open[1:]
		}
	}

	for k, open := range pending {
		if len(open) > 0 {
			return nil, fmt.Errorf("%w: note %d on channel %d never released", ErrMalformed, k.pitch, k.channel)
		}
	}
	return notes, nil
}

// PitchData returns pitches and on/off times of every note in note-on order
func (s *Score) PitchData() (pitches []int, on, off []uint32) {
	pitches = make([]int, len(s.Notes))
	on = make([]uint32, len(s.Notes))
	off = make([]uint32, len(s.Notes))
	for i, n := range s.Notes {
		pitches[i] = n.Pitch
		on[i] = n.On
		off[i] = n.Off
	}
	return pitches, on, off
}

// Voices splits the notes back into n voices, assuming the slot-by-slot
// layout Encode produces: every n consecutive note-ons share one onset.
func (s *Score) Voices(n int) ([]music.Voice, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: voice count must be positive", music.ErrInvalidInput)
	}
	if len(s.Notes)%n != 0 {
		return nil, fmt.Errorf("%w: %d notes do not split into %d voices", ErrMalformed, len(s.Notes), n)
	}

	slots := len(s.Notes) / n
	voices := make([]music.Voice, n)
	for v := range voices {
		voices[v] = make(music.Voice, slots)
	}
	for slot := 0; slot < slots; slot++ {
		onset := s.Notes[slot*n].On
		for v := 0; v < n; v++ {
			note := s.Notes[slot*n+v]
			if note.On != onset {
				return nil, fmt.Errorf("%w: slot %d mixes onsets %d and %d", ErrMalformed, slot, onset, note.On)
			}
			voices[v][slot] = note
		}
	}
	return voices, nil
}

// Rhythm rebuilds the rhythm grid of the first voice
func (s *Score) Rhythm(voices int) (music.Rhythm, error) {
	vs, err := s.Voices(voices)
	if err != nil {
		return nil, err
	}
	v := vs[0]
	on := make([]uint32, len(v))
	off := make([]uint32, len(v))
	for i, n := range v {
		on[i] = n.On
		off[i] = n.Off
	}
	return music.OnOffToRhythm(on, off)
}
