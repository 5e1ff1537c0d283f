// Package config resolves service settings from the environment and holds the shared generation defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caseymeehan/mess-o-midi/pkg/music"
)

// Environment variable names
const (
	EnvPort      = "PORT"
	EnvHost      = "HOST"
	EnvDebug     = "DEBUG"
	EnvOutputDir = "OUTPUT_DIR"
)

// DefaultOutputDir is resolved against the working directory
const DefaultOutputDir = "uploads/midi"

// Defaults are the generation parameters used when a request leaves them out
type Defaults struct {
	Scale      music.Scale
	Rhythm     music.Rhythm
	Tempo      float64
	Resolution uint16
}

// Config is the main configuration structure
type Config struct {
	Host      string
	Port      int
	Debug     bool
	OutputDir string
	Defaults  Defaults
}

// DefaultScale is the C major bass range, E1-D2
func DefaultScale() music.Scale {
	return music.Scale{40, 41, 43, 45, 47, 48, 50}
}

// DefaultRhythm is 12 whole notes, 6 half notes and 5 quarter notes at 96 ticks per quarter
func DefaultRhythm() music.Rhythm {
	return music.Rhythm{
		0, 384, 768, 1152, 1536, 1920, 2304, 2688, 3072, 3456, 3840, 4224, 4608,
		4800, 4992, 5184, 5376, 5568, 5760,
		5856, 5952, 6048, 6144, 6240,
	}
}

// DefaultDefaults returns fresh copies of the shared generation defaults
func DefaultDefaults() Defaults {
	return Defaults{
		Scale:      DefaultScale(),
		Rhythm:     DefaultRhythm(),
		Tempo:      120,
		Resolution: 96,
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:      "0.0.0.0",
		Port:      5001,
		Debug:     false,
		OutputDir: DefaultOutputDir,
		Defaults:  DefaultDefaults(),
	}
}

// Load reads PORT, HOST, DEBUG and OUTPUT_DIR over the defaults
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with a custom variable lookup
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Port = port
	}
	if v := getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := getenv(EnvDebug); v != "" {
		cfg.Debug = strings.EqualFold(v, "true")
	}
	if v := getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	return cfg, nil
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EnsureOutputDir makes OutputDir absolute and creates it if missing
func (c *Config) EnsureOutputDir() (string, error) {
	dir, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	c.OutputDir = dir
	return dir, nil
}
