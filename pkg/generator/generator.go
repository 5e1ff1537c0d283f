// Package generator produces the voices for basslines and chord progressions
package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/caseymeehan/mess-o-midi/pkg/music"
)

// Kind names a generation strategy
type Kind string

const (
	KindBass          Kind = "bass"
	KindComplexChords Kind = "complex-chords"
	KindSimpleChords  Kind = "simple-chords"
)

// FilePrefix is the kind as used in generated file names
func (k Kind) FilePrefix() string {
	return strings.ReplaceAll(string(k), "-", "_")
}

// Generator produces parallel voices of equal length, one note per rhythm slot
type Generator interface {
	Kind() Kind
	Description() string
	VoiceNames() []string
	Generate(rng *rand.Rand, scale music.Scale, rhythm music.Rhythm) ([]music.Voice, error)
}

var registry = []Generator{
	NewBass(),
	NewComplexChords(),
	NewSimpleChords(),
}

// All returns every registered generator in a stable order
func All() []Generator {
	out := make([]Generator, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds the generator for a kind
func Lookup(kind Kind) (Generator, error) {
	for _, g := range registry {
		if g.Kind() == kind {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown generator %q", music.ErrInvalidInput, kind)
}

// ParseKind accepts the kind names plus a few aliases
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bass", "bassline":
		return KindBass, nil
	case "complex-chords", "complex_chords", "complex":
		return KindComplexChords, nil
	case "simple-chords", "simple_chords", "simple":
		return KindSimpleChords, nil
	default:
		return "", fmt.Errorf("%w: unknown generator %q", music.ErrInvalidInput, s)
	}
}

func checkInputs(scale music.Scale, rhythm music.Rhythm) error {
	if err := scale.Validate(); err != nil {
		return err
	}
	return rhythm.Validate()
}

// voicesFromPitches lays every pitch line onto the same rhythm
func voicesFromPitches(rhythm music.Rhythm, lines ...[]int) ([]music.Voice, error) {
	voices := make([]music.Voice, len(lines))
	for i, pitches := range lines {
		v, err := music.VoiceFromRhythm(pitches, rhythm)
		if err != nil {
			return nil, err
		}
		voices[i] = v
	}
	return voices, nil
}
