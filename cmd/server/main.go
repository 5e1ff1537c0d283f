// Package main is the entry point for the mess-o-midi API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caseymeehan/mess-o-midi/pkg/api"
	"github.com/caseymeehan/mess-o-midi/pkg/config"
	"github.com/caseymeehan/mess-o-midi/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Host, "host", cfg.Host, "Listen address")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for generated files")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Debug logging")
	flag.Parse()

	log, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Port)

	if err := api.StartServer(cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
