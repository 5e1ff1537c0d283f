package generator

import (
	"math/rand/v2"

	"github.com/caseymeehan/mess-o-midi/pkg/music"
)

// Interval sizes in semitones
const (
	octave     = 12
	minorThird = 3
)

// harmonyOffsets are the random steps stacked by ComplexChords
var harmonyOffsets = []int{2, 3, 4}

// ComplexChords stacks three randomly spaced harmony layers over a bassline and its octave
type ComplexChords struct{}

// NewComplexChords creates a complex chord generator
func NewComplexChords() *ComplexChords {
	return &ComplexChords{}
}

// Kind returns KindComplexChords
func (c *ComplexChords) Kind() Kind { return KindComplexChords }

// Description returns a one-line summary
func (c *ComplexChords) Description() string {
	return "Bass, roots and three random 2-4 semitone harmony layers fitted to C major"
}

// VoiceNames lists the voices in output order
func (c *ComplexChords) VoiceNames() []string {
	return []string{"bass", "roots", "harmony1", "harmony2", "harmony3"}
}

// Generate returns bass, roots, harmony1, harmony2, harmony3
func (c *ComplexChords) Generate(rng *rand.Rand, scale music.Scale, rhythm music.Rhythm) ([]music.Voice, error) {
	if err := checkInputs(scale, rhythm); err != nil {
		return nil, err
	}

	bass := music.RandomChoices(rng, scale, rhythm.Slots())
	roots := music.Transpose(bass, octave)
	harmony1 := randomHarmony(rng, roots)
	harmony2 := randomHarmony(rng, harmony1)
	harmony3 := randomHarmony(rng, harmony2)

	return voicesFromPitches(rhythm, bass, roots, harmony1, harmony2, harmony3)
}

// randomHarmony raises each pitch by 2, 3 or 4 semitones, then fits to C major
func randomHarmony(rng *rand.Rand, pitches []int) []int {
	raised := make([]int, len(pitches))
	for i, p := range pitches {
		raised[i] = p + harmonyOffsets[rng.IntN(len(harmonyOffsets))]
	}
	return music.FitToCMajor(raised)
}

// SimpleChords builds root, third, fifth and octave triads over a random bassline
type SimpleChords struct{}

// NewSimpleChords creates a simple chord generator
func NewSimpleChords() *SimpleChords {
	return &SimpleChords{}
}

// Kind returns KindSimpleChords
func (s *SimpleChords) Kind() Kind { return KindSimpleChords }

// Description returns a one-line summary
func (s *SimpleChords) Description() string {
	return "Root, third, fifth and octave triads fitted to C major"
}

// VoiceNames lists the voices in output order
func (s *SimpleChords) VoiceNames() []string {
	return []string{"roots", "harmony1", "harmony2", "roots_octave"}
}

// Generate returns roots, harmony1, harmony2, rootsOctave. The bassline
// itself only seeds the roots and is not emitted.
func (s *SimpleChords) Generate(rng *rand.Rand, scale music.Scale, rhythm music.Rhythm) ([]music.Voice, error) {
	if err := checkInputs(scale, rhythm); err != nil {
		return nil, err
	}

	bass := music.RandomChoices(rng, scale, rhythm.Slots())
	roots := music.Transpose(bass, octave)
	harmony1 := music.FitToCMajor(music.Transpose(roots, minorThird))
	harmony2 := music.FitToCMajor(music.Transpose(harmony1, minorThird))
	rootsOctave := music.Transpose(roots, octave)

	return voicesFromPitches(rhythm, roots, harmony1, harmony2, rootsOctave)
}
