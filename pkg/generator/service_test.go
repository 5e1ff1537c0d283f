package generator

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	"github.com/caseymeehan/mess-o-midi/pkg/music"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(t.TempDir(), config.DefaultDefaults(),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
		WithSeedSource(func() uint64 { return 77 }),
	)
}

func TestServiceGenerateDefaults(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		kind     Kind
		filename string
		voices   int
	}{
		{KindBass, "bass_1700000000.mid", 1},
		{KindComplexChords, "complex_chords_1700000000.mid", 5},
		{KindSimpleChords, "simple_chords_1700000000.mid", 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			res, err := svc.Generate(tt.kind, Request{})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if res.Filename != tt.filename {
				t.Errorf("Filename = %q, want %q", res.Filename, tt.filename)
			}
			if res.Path != filepath.Join(svc.OutputDir(), tt.filename) {
				t.Errorf("Path = %q", res.Path)
			}
			if res.Seed != 77 {
				t.Errorf("Seed = %d, want 77", res.Seed)
			}
			if res.Events != tt.voices*23*2 {
				t.Errorf("Events = %d, want %d", res.Events, tt.voices*23*2)
			}

			score, err := midifile.DecodeFile(res.Path)
			if err != nil {
				t.Fatalf("DecodeFile() error = %v", err)
			}
			got, err := score.Voices(tt.voices)
			if err != nil {
				t.Fatalf("Voices() error = %v", err)
			}
			if !reflect.DeepEqual(got, res.Voices) {
				t.Error("decoded voices differ from generated voices")
			}
		})
	}
}

func TestServiceGenerateWithParameters(t *testing.T) {
	svc := newTestService(t)
	seed := uint64(5)

	res, err := svc.Generate(KindBass, Request{
		Filename: "groove",
		Scale:    []int{60},
		Rhythm:   []int{0, 96, 192},
		Seed:     &seed,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Filename != "groove.mid" {
		t.Errorf("Filename = %q, want groove.mid", res.Filename)
	}
	if res.Seed != 5 {
		t.Errorf("Seed = %d, want 5", res.Seed)
	}
	want := music.Voice{{Pitch: 60, On: 0, Off: 96}, {Pitch: 60, On: 96, Off: 192}}
	if !reflect.DeepEqual(res.Voices[0], want) {
		t.Errorf("Voices[0] = %+v, want %+v", res.Voices[0], want)
	}
}

func TestServiceSameSeedSameFile(t *testing.T) {
	svc := newTestService(t)
	seed := uint64(99)

	a, err := svc.Generate(KindComplexChords, Request{Filename: "a.mid", Seed: &seed})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := svc.Generate(KindComplexChords, Request{Filename: "b.mid", Seed: &seed})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	da, _ := os.ReadFile(a.Path)
	db, _ := os.ReadFile(b.Path)
	if len(da) == 0 || string(da) != string(db) {
		t.Error("same seed should write identical files")
	}
}

func TestServiceSameFilenameLastWriterWins(t *testing.T) {
	svc := newTestService(t)
	const writers = 8

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seed := uint64(i + 1)
			_, errs[i] = svc.Generate(KindComplexChords, Request{Filename: "shared.mid", Seed: &seed})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: Generate() error = %v", i, err)
		}
	}

	entries, err := os.ReadDir(svc.OutputDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "shared.mid" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("output dir holds %v, want only shared.mid", names)
	}

	score, err := midifile.DecodeFile(filepath.Join(svc.OutputDir(), "shared.mid"))
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	voices, err := score.Voices(5)
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}

	// the surviving file is exactly one writer's output
	var matched bool
	for i := 0; i < writers; i++ {
		want, err := NewComplexChords().Generate(NewRand(uint64(i+1)), svc.Defaults().Scale, svc.Defaults().Rhythm)
		if err != nil {
			t.Fatal(err)
		}
		if reflect.DeepEqual(voices, want) {
			matched = true
			break
		}
	}
	if !matched {
		t.Error("shared.mid does not match any single writer's voices")
	}
}

func TestServiceGenerateErrors(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		kind    Kind
		req     Request
		wantErr error
	}{
		{"unknown kind", "drums", Request{}, music.ErrInvalidInput},
		{"empty scale", KindBass, Request{Scale: []int{}}, music.ErrInvalidInput},
		{"scale out of range", KindBass, Request{Scale: []int{200}}, music.ErrInvalidInput},
		{"single boundary rhythm", KindBass, Request{Rhythm: []int{0}}, music.ErrInvalidInput},
		{"negative rhythm", KindBass, Request{Rhythm: []int{-1, 96}}, music.ErrInvalidInput},
		{"path traversal", KindBass, Request{Filename: "../escape"}, music.ErrInvalidInput},
		{"bad contour", KindBass, Request{Contour: "zigzag"}, music.ErrInvalidInput},
		{"pitch beyond midi range", KindSimpleChords, Request{Scale: []int{120}}, midifile.ErrEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(tt.kind, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	entries, _ := os.ReadDir(svc.OutputDir())
	if len(entries) != 0 {
		t.Errorf("failed generations left %d files behind", len(entries))
	}
}

func TestServiceUnwritableDir(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "missing"), config.DefaultDefaults())
	if _, err := svc.Generate(KindBass, Request{}); !errors.Is(err, midifile.ErrIO) {
		t.Errorf("Generate() error = %v, want ErrIO", err)
	}
}

func TestServiceResolve(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Generate(KindBass, Request{Filename: "keep.mid"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	path, err := svc.Resolve("keep.mid")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != res.Path {
		t.Errorf("Resolve() = %q, want %q", path, res.Path)
	}

	if _, err := svc.Resolve("absent.mid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(absent) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Resolve("notes.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(notes.txt) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Resolve("../etc/passwd"); !errors.Is(err, music.ErrInvalidInput) {
		t.Errorf("Resolve(traversal) error = %v, want ErrInvalidInput", err)
	}
}
