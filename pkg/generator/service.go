package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	"github.com/caseymeehan/mess-o-midi/pkg/music"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a requested file does not exist in the output directory
var ErrNotFound = errors.New("file not found")

// Request holds the optional parameters of a generation
type Request struct {
	Filename string
	Scale    []int
	Rhythm   []int
	Seed     *uint64
	Contour  Contour // bass only
}

// Result describes a written file
type Result struct {
	Kind     Kind
	Filename string
	Path     string
	Seed     uint64
	Voices   []music.Voice
	Events   int
}

// Service runs the full pipeline: generate, encode, package, write
type Service struct {
	outputDir string
	defaults  config.Defaults
	log       *zap.Logger
	now       func() time.Time
	seed      func() uint64
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithClock sets the time source used for default file names
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSeedSource sets where seeds come from when a request has none
func WithSeedSource(seed func() uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// NewService creates a service writing into outputDir
func NewService(outputDir string, defaults config.Defaults, opts ...Option) *Service {
	s := &Service{
		outputDir: outputDir,
		defaults:  defaults,
		log:       zap.NewNop(),
		now:       time.Now,
		seed:      rand.Uint64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OutputDir returns the directory files are written to
func (s *Service) OutputDir() string {
	return s.outputDir
}

// Defaults returns the generation defaults
func (s *Service) Defaults() config.Defaults {
	return s.defaults
}

// NewRand returns the seeded source a generation uses
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate produces one file for kind. Missing scale and rhythm fall back to
// the service defaults; a missing file name becomes <kind>_<unix>.mid.
func (s *Service) Generate(kind Kind, req Request) (*Result, error) {
	gen, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	if kind == KindBass && req.Contour != "" {
		if req.Contour != ContourUniform && req.Contour != ContourCentered {
			return nil, fmt.Errorf("%w: unknown contour %q", music.ErrInvalidInput, req.Contour)
		}
		gen = &Bass{Contour: req.Contour}
	}

	filename, err := s.filename(kind, req.Filename)
	if err != nil {
		return nil, err
	}

	scale := s.defaults.Scale
	if req.Scale != nil {
		scale = music.Scale(req.Scale)
	}
	rhythm := s.defaults.Rhythm
	if req.Rhythm != nil {
		if rhythm, err = music.NewRhythm(req.Rhythm); err != nil {
			return nil, err
		}
	}

	seed := s.seed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	voices, err := gen.Generate(NewRand(seed), scale, rhythm)
	if err != nil {
		return nil, err
	}

	events, err := midifile.Encode(voices)
	if err != nil {
		return nil, err
	}

	smfFile, err := midifile.Package(events,
		midifile.WithResolution(s.defaults.Resolution),
		midifile.WithTempo(s.defaults.Tempo),
	)
	if err != nil {
		return nil, err
	}

	path, err := midifile.Write(smfFile, filepath.Join(s.outputDir, filename))
	if err != nil {
		return nil, err
	}

	s.log.Info("generated midi file",
		zap.String("kind", string(kind)),
		zap.String("filename", filename),
		zap.Uint64("seed", seed),
		zap.Int("voices", len(voices)),
		zap.Int("events", len(events)),
	)

	return &Result{
		Kind:     kind,
		Filename: filename,
		Path:     path,
		Seed:     seed,
		Voices:   voices,
		Events:   len(events),
	}, nil
}

// Resolve returns the path of a previously written file
func (s *Service) Resolve(filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	if midifile.DetectFormat(filename) != midifile.FormatMIDI {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	path := filepath.Join(s.outputDir, filename)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return "", fmt.Errorf("%w: %w", midifile.ErrIO, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return path, nil
}

func (s *Service) filename(kind Kind, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("%s_%d", kind.FilePrefix(), s.now().Unix())
	}
	name = midifile.EnsureExtension(name)
	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateFilename rejects names that would leave the output directory
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: invalid file name %q", music.ErrInvalidInput, name)
	}
	return nil
}
