package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/caseymeehan/mess-o-midi/pkg/api"
	"github.com/caseymeehan/mess-o-midi/pkg/client"
	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/generator"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	"github.com/caseymeehan/mess-o-midi/pkg/music"
	"go.uber.org/zap"
)

func TestParseInts(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"  ", nil, false},
		{"60", []int{60}, false},
		{"0, 96,192", []int{0, 96, 192}, false},
		{"40,x", nil, true},
		{"1,,2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInts(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInts(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInts(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("HOST", "")
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("DEBUG", "")

	outputDir, serverHost, serverPort, debug = "out", "127.0.0.1", 0, true
	t.Cleanup(func() { outputDir, serverHost, serverPort, debug = "", "", 0, false })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want 7000 from env", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" || cfg.OutputDir != "out" || !cfg.Debug {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func midiBytes(t *testing.T) []byte {
	t.Helper()
	v, err := music.VoiceFromRhythm([]int{60, 62}, music.Rhythm{0, 96, 192})
	if err != nil {
		t.Fatal(err)
	}
	events, err := midifile.Encode([]music.Voice{v})
	if err != nil {
		t.Fatal(err)
	}
	s, err := midifile.Package(events)
	if err != nil {
		t.Fatal(err)
	}
	data, err := midifile.Bytes(s)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// stubService answers generate with body and serves download from the handler given
func stubService(t *testing.T, generateBody string, download http.HandlerFunc) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("/api/generate/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(generateBody))
	})
	mux.HandleFunc("/api/download/", download)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestGenerateRemote(t *testing.T) {
	data := midiBytes(t)
	serveMIDI := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/midi")
		_, _ = w.Write(data)
	}
	notFound := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"File not found"}`))
	}
	notMIDI := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}

	tests := []struct {
		name     string
		body     string
		download http.HandlerFunc
		wantFile string
		wantErr  error
	}{
		{"seedless success", `{"success":true,"filename":"x.mid"}`, serveMIDI, "x.mid", nil},
		{"with seed", `{"success":true,"filename":"y.mid","seed":4}`, serveMIDI, "y.mid", nil},
		{"download fails", `{"success":true,"filename":"gone.mid"}`, notFound, "", client.ErrRequestFailed},
		{"body is not midi", `{"success":true,"filename":"bad.mid"}`, notMIDI, "", midifile.ErrMalformed},
		{"server name escapes", `{"success":true,"filename":"../x.mid"}`, serveMIDI, "", music.ErrInvalidInput},
		{"server name empty", `{"success":true}`, serveMIDI, "", music.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "out")
			if err := os.Mkdir(dir, 0755); err != nil {
				t.Fatal(err)
			}
			url := stubService(t, tt.body, tt.download)

			path, err := generateRemote(context.Background(), zap.NewNop(), url, dir,
				generator.KindBass, api.GenerateRequest{})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("generateRemote() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("generateRemote() error = %v", err)
			}

			for _, d := range []string{root, dir} {
				entries, _ := os.ReadDir(d)
				for _, e := range entries {
					if e.Name() == "out" || e.Name() == tt.wantFile {
						continue
					}
					t.Errorf("unexpected file %s left in %s", e.Name(), d)
				}
			}
			if tt.wantFile == "" {
				return
			}

			if path != filepath.Join(dir, tt.wantFile) {
				t.Errorf("path = %q, want %q", path, filepath.Join(dir, tt.wantFile))
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != string(data) {
				t.Error("saved file differs from the download")
			}
		})
	}
}

func TestGenerateRemoteUsesConfiguredDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "env-out")
	t.Setenv(config.EnvOutputDir, dir)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := cfg.EnsureOutputDir()
	if err != nil {
		t.Fatal(err)
	}
	if resolved != dir {
		t.Fatalf("output dir = %s, want %s from the environment", resolved, dir)
	}

	data := midiBytes(t)
	url := stubService(t, `{"success":true,"filename":"env.mid"}`, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	})

	path, err := generateRemote(context.Background(), zap.NewNop(), url, resolved,
		generator.KindSimpleChords, api.GenerateRequest{})
	if err != nil {
		t.Fatalf("generateRemote() error = %v", err)
	}
	if filepath.Dir(path) != resolved {
		t.Errorf("saved to %s, want a file in %s", path, resolved)
	}
}
