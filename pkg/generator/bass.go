package generator

import (
	"math/rand/v2"

	"github.com/caseymeehan/mess-o-midi/pkg/music"
)

// Contour selects how bass pitches are drawn from the scale
type Contour string

const (
	// ContourUniform draws every scale member with equal probability
	ContourUniform Contour = "uniform"
	// ContourCentered favours the middle of the scale
	ContourCentered Contour = "centered"
)

// Bass generates a single random bassline
type Bass struct {
	Contour Contour
}

// NewBass creates a bass generator with uniform draws
func NewBass() *Bass {
	return &Bass{Contour: ContourUniform}
}

// Kind returns KindBass
func (b *Bass) Kind() Kind { return KindBass }

// Description returns a one-line summary
func (b *Bass) Description() string {
	return "Random bassline drawn from the scale"
}

// VoiceNames lists the voices in output order
func (b *Bass) VoiceNames() []string { return []string{"bass"} }

// Generate draws one pitch per rhythm slot
func (b *Bass) Generate(rng *rand.Rand, scale music.Scale, rhythm music.Rhythm) ([]music.Voice, error) {
	if err := checkInputs(scale, rhythm); err != nil {
		return nil, err
	}
	pitches := drawBass(rng, scale, rhythm.Slots(), b.Contour)
	return voicesFromPitches(rhythm, pitches)
}

func drawBass(rng *rand.Rand, scale music.Scale, n int, contour Contour) []int {
	if contour != ContourCentered {
		return music.RandomChoices(rng, scale, n)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = music.NormalChoice(rng, scale)
	}
	return out
}
