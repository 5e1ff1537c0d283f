// Package music holds the pitch and timing model shared by the generators and the MIDI encoder
package music

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for malformed scales and rhythm grids
var ErrInvalidInput = errors.New("invalid input")

// MaxPitch is the highest valid MIDI note number
const MaxPitch = 127

// Note is one rhythm slot of a voice
type Note struct {
	Pitch int    // MIDI note number, may leave 0-127 after transposition
	On    uint32 // note-on tick
	Off   uint32 // note-off tick
}

// Voice is one part's sequence of back-to-back notes
type Voice []Note

// Pitches returns the pitch of every note in the voice
func (v Voice) Pitches() []int {
	out := make([]int, len(v))
	for i, n := range v {
		out[i] = n.Pitch
	}
	return out
}

// Scale is the ordered set of pitches a generator may draw from
type Scale []int

// Validate checks that the scale is non-empty and every member is a MIDI note
func (s Scale) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: scale is empty", ErrInvalidInput)
	}
	for i, p := range s {
		if p < 0 || p > MaxPitch {
			return fmt.Errorf("%w: scale[%d] = %d out of range 0-%d", ErrInvalidInput, i, p, MaxPitch)
		}
	}
	return nil
}

// Transpose returns a copy of pitches shifted by semitones
func Transpose(pitches []int, semitones int) []int {
	out := make([]int, len(pitches))
	for i, p := range pitches {
		out[i] = p + semitones
	}
	return out
}

// NewVoice zips pitches with on/off times into a voice.
// The three slices must have equal length.
func NewVoice(pitches []int, on, off []uint32) (Voice, error) {
	if len(pitches) != len(on) || len(on) != len(off) {
		return nil, fmt.Errorf("%w: %d pitches for %d on and %d off times",
			ErrInvalidInput, len(pitches), len(on), len(off))
	}
	v := make(Voice, len(pitches))
	for i := range pitches {
		v[i] = Note{Pitch: pitches[i], On: on[i], Off: off[i]}
	}
	return v, nil
}
