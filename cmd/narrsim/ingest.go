package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narrsim/narrsim/internal/embedding"
	"github.com/narrsim/narrsim/internal/pipeline"
	"github.com/narrsim/narrsim/internal/transcript"
	"github.com/narrsim/narrsim/internal/vectorizer"
	"github.com/narrsim/narrsim/internal/vectorstore"
)

var ingestFlags struct {
	dataDir          string
	storePath        string
	preferPretrained bool
	allowFallback    bool
	tfidfDim         int
	backendURL       string
	model            string
	dimensions       int
	noNormalize      bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract transcripts, vectorize them and persist embeddings",
	Long: `Ingest walks the data directory (one subdirectory per ticker),
extracts text from every PDF, vectorizes the corpus and bulk-inserts
one embedding row per document into the SQLite store, grouped by
ticker.

When the pretrained backend is preferred but unavailable, the error is
surfaced; pass --allow-fallback to explicitly fall back to TF-IDF.`,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestFlags.dataDir, "data-dir", "", "Transcript tree root (default from config)")
	f.StringVar(&ingestFlags.storePath, "store", "", "SQLite store path (default from config)")
	f.BoolVar(&ingestFlags.preferPretrained, "prefer-pretrained", true, "Try the pretrained embedding backend first")
	f.BoolVar(&ingestFlags.allowFallback, "allow-fallback", false, "Fall back to TF-IDF when the pretrained backend is unavailable")
	f.IntVar(&ingestFlags.tfidfDim, "tfidf-dim", 0, "TF-IDF dimension cap (default from config)")
	f.StringVar(&ingestFlags.backendURL, "backend-url", "", "Embedding backend URL (default from config or NARRSIM_EMBED_URL)")
	f.StringVar(&ingestFlags.model, "model", "", "Embedding model name")
	f.IntVar(&ingestFlags.dimensions, "dimensions", 0, "Expected pretrained vector width")
	f.BoolVar(&ingestFlags.noNormalize, "no-normalize", false, "Skip L2 normalization of pretrained embeddings")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = ingestFlags.dataDir
	}
	if cmd.Flags().Changed("store") {
		cfg.StorePath = ingestFlags.storePath
	}
	if cmd.Flags().Changed("prefer-pretrained") {
		cfg.Vectorizer.PreferPretrained = ingestFlags.preferPretrained
	}
	if cmd.Flags().Changed("tfidf-dim") {
		cfg.Vectorizer.TFIDFDim = ingestFlags.tfidfDim
	}
	if cmd.Flags().Changed("backend-url") {
		cfg.Vectorizer.BackendURL = ingestFlags.backendURL
	}
	if cmd.Flags().Changed("model") {
		cfg.Vectorizer.Model = ingestFlags.model
	}
	if cmd.Flags().Changed("dimensions") {
		cfg.Vectorizer.Dimensions = ingestFlags.dimensions
	}
	if ingestFlags.noNormalize {
		cfg.Vectorizer.Normalize = false
	}

	ctx := cmd.Context()

	docs, err := transcript.Collect(cfg.DataDir)
	if err != nil {
		return err
	}

	vec, err := vectorizer.New(ctx, cfg.Vectorizer)
	if err != nil {
		// Fallback is opt-in only; a preferred backend failure is
		// otherwise surfaced unchanged.
		if !ingestFlags.allowFallback || !errors.Is(err, embedding.ErrUnavailable) {
			return err
		}
		if humanOutput {
			fmt.Fprintf(os.Stderr, "warning: %v; falling back to tfidf\n", err)
		}
		vec = vectorizer.NewTFIDF(cfg.Vectorizer.TFIDFDim)
	}

	store, err := vectorstore.Open(cfg.StorePath, vec.Dim())
	if err != nil {
		return err
	}
	defer store.Close()

	ing := pipeline.NewIngester(vec, store)
	if humanOutput {
		ing.SetProgressReporter(pipeline.ProgressFunc(func(stage string, current, total int) {
			fmt.Fprintf(os.Stderr, "%s %d/%d\n", stage, current, total)
		}))
	}

	stats, err := ing.Run(ctx, docs)
	if err != nil {
		return err
	}

	if humanOutput {
		outputHuman("ingested %d documents across %d tickers into %s (%s, dim %d)",
			stats.Documents, stats.Tickers, cfg.StorePath, stats.Vectorizer, stats.Dimension)
		return nil
	}
	return outputJSON(stats)
}
