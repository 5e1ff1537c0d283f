// Package midifile encodes generated voices as MIDI events and packages them into Standard MIDI Files
package midifile

import (
	"errors"
	"fmt"

	"github.com/caseymeehan/mess-o-midi/pkg/music"
	"gitlab.com/gomidi/midi/v2"
)

// ErrEncoding is returned when an event field is outside its MIDI range
var ErrEncoding = errors.New("encoding error")

// Default event values
const (
	DefaultChannel     = 0
	DefaultVelocityOn  = 100
	DefaultVelocityOff = 64
	MaxChannel         = 15
	MaxDataByte        = 127
)

// EventKind tags an Event as note-on or note-off
type EventKind uint8

const (
	NoteOn EventKind = iota + 1
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	default:
		return "unknown"
	}
}

// Event is a note-on or note-off at an absolute tick
type Event struct {
	Kind     EventKind
	Channel  int
	Pitch    int
	Velocity int
	Tick     uint32 // absolute, not delta
}

// Validate checks every field fits its MIDI data range
func (e Event) Validate() error {
	if e.Kind != NoteOn && e.Kind != NoteOff {
		return fmt.Errorf("%w: unknown event kind %d", ErrEncoding, e.Kind)
	}
	if e.Channel < 0 || e.Channel > MaxChannel {
		return fmt.Errorf("%w: channel %d out of range 0-%d", ErrEncoding, e.Channel, MaxChannel)
	}
	if e.Pitch < 0 || e.Pitch > MaxDataByte {
		return fmt.Errorf("%w: pitch %d out of range 0-%d at tick %d", ErrEncoding, e.Pitch, MaxDataByte, e.Tick)
	}
	if e.Velocity < 0 || e.Velocity > MaxDataByte {
		return fmt.Errorf("%w: velocity %d out of range 0-%d", ErrEncoding, e.Velocity, MaxDataByte)
	}
	return nil
}

// Message returns the channel message for the event. Call Validate first.
func (e Event) Message() midi.Message {
	if e.Kind == NoteOff {
		return midi.NoteOffVelocity(uint8(e.Channel), uint8(e.Pitch), uint8(e.Velocity))
	}
	return midi.NoteOn(uint8(e.Channel), uint8(e.Pitch), uint8(e.Velocity))
}

// EncodeOptions holds the channel and velocities applied to every event
type EncodeOptions struct {
	Channel     int
	VelocityOn  int
	VelocityOff int
}

// EncodeOption modifies EncodeOptions
type EncodeOption func(*EncodeOptions)

// WithChannel sets the MIDI channel (0-15)
func WithChannel(ch int) EncodeOption {
	return func(o *EncodeOptions) {
		o.Channel = ch
	}
}

// WithVelocities sets the note-on and note-off velocities
func WithVelocities(on, off int) EncodeOption {
	return func(o *EncodeOptions) {
		o.VelocityOn = on
		o.VelocityOff = off
	}
}

// Encode interleaves the voices slot by slot: for each slot every voice's
// note-on in voice order, then every voice's note-off. A single voice comes
// out as on, off, on, off.
func Encode(voices []music.Voice, opts ...EncodeOption) ([]Event, error) {
	o := EncodeOptions{
		Channel:     DefaultChannel,
		VelocityOn:  DefaultVelocityOn,
		VelocityOff: DefaultVelocityOff,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if len(voices) == 0 {
		return nil, fmt.Errorf("%w: no voices to encode", music.ErrInvalidInput)
	}
	slots := len(voices[0])
	for i, v := range voices {
		if len(v) != slots {
			return nil, fmt.Errorf("%w: voice %d has %d notes, voice 0 has %d",
				music.ErrInvalidInput, i, len(v), slots)
		}
	}

	events := make([]Event, 0, 2*slots*len(voices))
	for slot := 0; slot < slots; slot++ {
		for _, v := range voices {
			n := v[slot]
			if n.Off <= n.On {
				return nil, fmt.Errorf("%w: note at slot %d ends at %d before it starts at %d",
					music.ErrInvalidInput, slot, n.Off, n.On)
			}
			events = append(events, Event{Kind: NoteOn, Channel: o.Channel, Pitch: n.Pitch, Velocity: o.VelocityOn, Tick: n.On})
		}
		for _, v := range voices {
			n := v[slot]
			events = append(events, Event{Kind: NoteOff, Channel: o.Channel, Pitch: n.Pitch, Velocity: o.VelocityOff, Tick: n.Off})
		}
	}

	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, err
		}
	}
	return events, nil
}
