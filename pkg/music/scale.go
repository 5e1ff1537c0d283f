package music

import (
	"math/rand/v2"
	"sort"
)

// PitchClassSet is a set of pitch classes (0-11)
type PitchClassSet map[int]struct{}

// NewPitchClassSet builds a set from pitch classes or absolute pitches
func NewPitchClassSet(pitches ...int) PitchClassSet {
	s := make(PitchClassSet, len(pitches))
	for _, p := range pitches {
		s[pitchClass(p)] = struct{}{}
	}
	return s
}

// Contains reports whether the pitch's class is in the set
func (s PitchClassSet) Contains(pitch int) bool {
	_, ok := s[pitchClass(pitch)]
	return ok
}

// Classes returns the members in ascending order
func (s PitchClassSet) Classes() []int {
	out := make([]int, 0, len(s))
	for pc := range s {
		out = append(out, pc)
	}
	sort.Ints(out)
	return out
}

// WhiteKeys is the C major / white-key pitch-class set
var WhiteKeys = NewPitchClassSet(0, 2, 4, 5, 7, 9, 11)

func pitchClass(p int) int {
	pc := p % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// FitToScale moves every value outside the set up by one semitone.
// The step is applied once and not re-checked, so sets with gaps wider than a
// semitone can still be missed. Values are not clamped to the MIDI range.
func FitToScale(values []int, set PitchClassSet) []int {
	out := make([]int, len(values))
	for i, v := range values {
		if !set.Contains(v) {
			v++
		}
		out[i] = v
	}
	return out
}

// FitToCMajor fits values to the white keys
func FitToCMajor(values []int) []int {
	return FitToScale(values, WhiteKeys)
}

// RandomChoices draws k pitches uniformly, with replacement
func RandomChoices(rng *rand.Rand, scale Scale, k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = scale[rng.IntN(len(scale))]
	}
	return out
}

// NormalChoice picks an element with a normal distribution centred on the
// middle of the list, spanning roughly three deviations either side.
// It panics on an empty list.
func NormalChoice(rng *rand.Rand, list []int) int {
	if len(list) == 0 {
		panic("music: NormalChoice on empty list")
	}
	mean := float64(len(list)-1) / 2
	stddev := float64(len(list)) / 6
	for {
		idx := int(rng.NormFloat64()*stddev + mean + 0.5)
		if idx >= 0 && idx < len(list) {
			return list[idx]
		}
	}
}
