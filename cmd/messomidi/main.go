// Package main is the entry point for the messomidi CLI
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caseymeehan/mess-o-midi/pkg/api"
	"github.com/caseymeehan/mess-o-midi/pkg/client"
	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/generator"
	"github.com/caseymeehan/mess-o-midi/pkg/logging"
	"github.com/caseymeehan/mess-o-midi/pkg/midifile"
	"github.com/caseymeehan/mess-o-midi/pkg/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	outputDir  string
	scaleFlag  string
	rhythmFlag string
	seedFlag   uint64
	contour    string
	remoteURL  string
	serverHost string
	serverPort int
	voiceCount int
	debug      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "messomidi",
	Short: "Generate basslines and chord progressions as MIDI files",
	Long: `messomidi generates bass lines and chord progressions from a scale and a
rhythm grid and writes them as standard MIDI files.

Examples:
  messomidi generate bass
  messomidi generate simple-chords --scale 60,62,64 --rhythm 0,96,192,384 -o verse
  messomidi generate complex-chords --remote http://localhost:5001
  messomidi inspect uploads/midi/bass_1700000000.mid
  messomidi tui
  messomidi serve --port 5001`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var generateCmd = &cobra.Command{
	Use:       "generate <bass|complex-chords|simple-chords>",
	Short:     "Generate a MIDI file",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(generator.KindBass), string(generator.KindComplexChords), string(generator.KindSimpleChords)},
	RunE:      runGenerate,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Decode a MIDI file and print its notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var generatorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List the available generators",
	Args:  cobra.NoArgs,
	RunE:  runGenerators,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&outputDir, "dir", "", "Output directory (default $OUTPUT_DIR or uploads/midi)")

	// generate command
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file name (default <kind>_<unix time>.mid)")
	generateCmd.Flags().StringVar(&scaleFlag, "scale", "", "Comma separated MIDI pitches")
	generateCmd.Flags().StringVar(&rhythmFlag, "rhythm", "", "Comma separated tick boundaries")
	generateCmd.Flags().Uint64Var(&seedFlag, "seed", 0, "Random seed (default random)")
	generateCmd.Flags().StringVar(&contour, "contour", "", "Bass contour: uniform or centered")
	generateCmd.Flags().StringVar(&remoteURL, "remote", "", "Generate through a running service at this URL")

	// inspect command
	inspectCmd.Flags().IntVar(&voiceCount, "voices", 0, "Split notes into this many voices")

	// serve command
	serveCmd.Flags().StringVar(&serverHost, "host", "", "Listen address (default $HOST or 0.0.0.0)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default $PORT or 5001)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(generatorsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the environment and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if serverHost != "" {
		cfg.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Port = serverPort
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func newService(cfg *config.Config, log *zap.Logger) (*generator.Service, error) {
	dir, err := cfg.EnsureOutputDir()
	if err != nil {
		return nil, err
	}
	return generator.NewService(dir, cfg.Defaults, generator.WithLogger(log)), nil
}

// parseInts reads a comma separated list; an empty string means unset
func parseInts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	kind, err := generator.ParseKind(args[0])
	if err != nil {
		return err
	}
	scale, err := parseInts(scaleFlag)
	if err != nil {
		return fmt.Errorf("--scale: %w", err)
	}
	rhythm, err := parseInts(rhythmFlag)
	if err != nil {
		return fmt.Errorf("--rhythm: %w", err)
	}
	var seed *uint64
	if cmd.Flags().Changed("seed") {
		seed = &seedFlag
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if remoteURL != "" {
		dir, err := cfg.EnsureOutputDir()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		_, err = generateRemote(ctx, log, remoteURL, dir, kind, api.GenerateRequest{
			Filename: outputFile,
			Scale:    scale,
			Rhythm:   rhythm,
			Seed:     seed,
			Contour:  contour,
		})
		return err
	}

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	res, err := svc.Generate(kind, generator.Request{
		Filename: outputFile,
		Scale:    scale,
		Rhythm:   rhythm,
		Seed:     seed,
		Contour:  generator.Contour(contour),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d voices, %d events, seed %d)\n", res.Path, len(res.Voices), res.Events, res.Seed)
	return nil
}

// generateRemote has the service at baseURL generate a file and saves the
// download into dir. Nothing is written unless the whole download succeeds.
func generateRemote(ctx context.Context, log *zap.Logger, baseURL, dir string, kind generator.Kind, req api.GenerateRequest) (string, error) {
	c := client.New(baseURL, client.WithLogger(log))
	if !c.IsServiceAvailable(ctx) {
		return "", fmt.Errorf("service at %s is not available", baseURL)
	}

	resp, err := c.Generate(ctx, kind, req)
	if err != nil {
		return "", err
	}
	if err := generator.ValidateFilename(resp.Filename); err != nil {
		return "", fmt.Errorf("service returned %w", err)
	}

	var buf bytes.Buffer
	n, err := c.Download(ctx, resp.Filename, &buf)
	if err != nil {
		return "", err
	}
	if !midifile.IsMIDI(buf.Bytes()) {
		return "", fmt.Errorf("%w: %s is not a MIDI file", midifile.ErrMalformed, resp.Filename)
	}

	path, err := midifile.WriteBytes(buf.Bytes(), filepath.Join(dir, resp.Filename))
	if err != nil {
		return "", err
	}

	if resp.Seed != nil {
		fmt.Printf("Downloaded %s (%d bytes, seed %d)\n", path, n, *resp.Seed)
	} else {
		fmt.Printf("Downloaded %s (%d bytes)\n", path, n)
	}
	return path, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	if midifile.DetectFormat(args[0]) != midifile.FormatMIDI {
		fmt.Fprintf(os.Stderr, "warning: %s does not have a .mid extension\n", args[0])
	}
	score, err := midifile.DecodeFile(args[0])
	if err != nil {
		return err
	}
	fmt.Println(tui.Summary(score))

	if voiceCount <= 0 {
		return nil
	}
	voices, err := score.Voices(voiceCount)
	if err != nil {
		return err
	}
	rhythm, err := score.Rhythm(voiceCount)
	if err != nil {
		return err
	}
	fmt.Printf("Rhythm:     %v\n", []uint32(rhythm))
	for i, v := range voices {
		fmt.Printf("Voice %d:    %v\n", i+1, v.Pitches())
	}
	return nil
}

func runGenerators(cmd *cobra.Command, args []string) error {
	for _, g := range generator.All() {
		fmt.Printf("%-16s %s\n", g.Kind(), g.Description())
		fmt.Printf("%-16s voices: %s\n", "", strings.Join(g.VoiceNames(), ", "))
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := newService(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	return tui.Run(svc)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Printf("Starting API server on %s...\n", cfg.Addr())
	return api.StartServer(cfg, log)
}
