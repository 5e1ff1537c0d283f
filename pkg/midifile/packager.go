package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrIO is returned when a MIDI file cannot be read or written
var ErrIO = errors.New("i/o error")

// File layout defaults
const (
	DefaultResolution = 96
	DefaultTempo      = 120.0
	// EndPadding is the gap between the last event and end-of-track, one 4/4 bar at 96 tpq
	EndPadding = 384
)

type packageOptions struct {
	resolution uint16
	tempo      float64
}

// PackageOption modifies how events are packaged
type PackageOption func(*packageOptions)

// WithResolution sets the ticks per quarter note
func WithResolution(ticks uint16) PackageOption {
	return func(o *packageOptions) {
		o.resolution = ticks
	}
}

// WithTempo sets the tempo meta event in BPM
func WithTempo(bpm float64) PackageOption {
	return func(o *packageOptions) {
		o.tempo = bpm
	}
}

// Package wraps events in a single-track (format 0) SMF with an empty track name,
// tempo and 4/4 time signature up front and end-of-track EndPadding ticks
// after the last event. Events may arrive in any order; they are stably
// sorted by tick before delta times are derived.
func Package(events []Event, opts ...PackageOption) (*smf.SMF, error) {
	o := packageOptions{
		resolution: DefaultResolution,
		tempo:      DefaultTempo,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolution == 0 {
		return nil, fmt.Errorf("%w: resolution must be positive", ErrEncoding)
	}
	if o.tempo <= 0 {
		o.tempo = DefaultTempo
	}

	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Tick < ordered[j].Tick
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(o.resolution)

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(""))
	track.Add(0, smf.MetaTempo(o.tempo))
	// 4/4, 36 MIDI clocks per click, 8 32nds per quarter
	track.Add(0, smf.MetaTimeSig(4, 4, 36, 8))

	var currentTick uint32
	for _, ev := range ordered {
		track.Add(ev.Tick-currentTick, ev.Message())
		currentTick = ev.Tick
	}

	track.Close(EndPadding)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return s, nil
}

// Bytes serializes the file in memory
func Bytes(s *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: failed to write MIDI: %w", ErrIO, err)
	}
	return buf.Bytes(), nil
}

// Write stores the file at path through a temp file in the same directory
// and a rename, so readers never see a partial file. It returns path.
func Write(s *smf.SMF, path string) (string, error) {
	data, err := Bytes(s)
	if err != nil {
		return "", err
	}
	return WriteBytes(data, path)
}

// WriteBytes is Write for an already serialized file
func WriteBytes(data []byte, path string) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file in %s: %w", ErrIO, dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrIO, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", fmt.Errorf("%w: chmod %s: %w", ErrIO, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: rename to %s: %w", ErrIO, path, err)
	}
	return path, nil
}

// WriteEvents packages events and writes them to path
func WriteEvents(events []Event, path string, opts ...PackageOption) (string, error) {
	s, err := Package(events, opts...)
	if err != nil {
		return "", err
	}
	return Write(s, path)
}
