package music

import (
	"fmt"
	"math"
)

// Rhythm is a strictly increasing grid of tick boundaries; N+1 boundaries make N notes
type Rhythm []uint32

// NewRhythm converts caller-supplied integers into a validated grid
func NewRhythm(values []int) (Rhythm, error) {
	r := make(Rhythm, len(values))
	for i, v := range values {
		if v < 0 || int64(v) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: rhythm[%d] = %d is not a valid tick", ErrInvalidInput, i, v)
		}
		r[i] = uint32(v)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the grid has at least two boundaries and strictly increases
func (r Rhythm) Validate() error {
	if len(r) < 2 {
		return fmt.Errorf("%w: rhythm needs at least 2 boundaries, got %d", ErrInvalidInput, len(r))
	}
	for i := 1; i < len(r); i++ {
		if r[i] <= r[i-1] {
			return fmt.Errorf("%w: rhythm not strictly increasing at index %d (%d after %d)",
				ErrInvalidInput, i, r[i], r[i-1])
		}
	}
	return nil
}

// Slots returns the number of notes the grid holds
func (r Rhythm) Slots() int {
	if len(r) == 0 {
		return 0
	}
	return len(r) - 1
}

// RhythmToOnOff splits the grid into note-on and note-off times.
// Each note is released exactly when the next one starts.
func RhythmToOnOff(r Rhythm) (on, off []uint32, err error) {
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}
	on = make([]uint32, len(r)-1)
	off = make([]uint32, len(r)-1)
	copy(on, r[:len(r)-1])
	copy(off, r[1:])
	return on, off, nil
}

// OnOffToRhythm rebuilds the grid from back-to-back on/off times
func OnOffToRhythm(on, off []uint32) (Rhythm, error) {
	if len(on) == 0 || len(on) != len(off) {
		return nil, fmt.Errorf("%w: %d on times and %d off times", ErrInvalidInput, len(on), len(off))
	}
	r := make(Rhythm, 0, len(on)+1)
	r = append(r, on...)
	r = append(r, off[len(off)-1])
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// VoiceFromRhythm lays pitches onto the grid, one pitch per slot
func VoiceFromRhythm(pitches []int, r Rhythm) (Voice, error) {
	on, off, err := RhythmToOnOff(r)
	if err != nil {
		return nil, err
	}
	return NewVoice(pitches, on, off)
}
