// Package main provides the narrsim CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/narrsim/narrsim/internal/comovement"
	"github.com/narrsim/narrsim/internal/config"
	"github.com/narrsim/narrsim/internal/embedding"
	"github.com/narrsim/narrsim/internal/transcript"
	"github.com/narrsim/narrsim/internal/vectorstore"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is the YAML configuration file.
var configPath string

func main() {
	// .env may carry NARRSIM_EMBED_URL for the embedding backend.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "narrsim",
	Short: "Narrative similarity and co-movement pipeline for earnings calls",
	Long: `narrsim computes a period-indexed series of narrative similarity
between two companies' earnings-call transcripts, plus a price-based
co-movement series, and merges both into one quarterly table.

Transcripts are vectorized with a pretrained embedding backend (or a
TF-IDF fallback), persisted to a SQLite vector store, aggregated per
firm and reporting period, and compared by cosine similarity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Path to YAML config file")
}

// loadConfig reads the configured YAML file, applying the environment
// override for the embedding backend URL.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if url := os.Getenv("NARRSIM_EMBED_URL"); url != "" {
		cfg.Vectorizer.BackendURL = url
	}
	return cfg, nil
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, embedding.ErrUnavailable):
		return ExitBackendUnavailable
	case errors.Is(err, transcript.ErrNotFound),
		errors.Is(err, comovement.ErrNotFound):
		return ExitConfigError
	case errors.Is(err, vectorstore.ErrDimensionMismatch),
		errors.Is(err, comovement.ErrInsufficientOverlap),
		errors.Is(err, comovement.ErrEmptyResult):
		return ExitDataError
	default:
		return ExitError
	}
}
