package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narrsim/narrsim/internal/similarity"
)

var similarityFlags struct {
	metaPath string
	embPath  string
	outPath  string
	tickerA  string
	tickerB  string
}

var similarityCmd = &cobra.Command{
	Use:   "similarity",
	Short: "Compute per-period cosine similarity between two tickers",
	Long: `Similarity joins transcript metadata to exported document embeddings
on a lower-cased document id, averages each ticker's vectors per
reporting period, and writes one cosine-similarity row per period in
which both tickers have at least one document.`,
	RunE: runSimilarity,
}

func init() {
	f := similarityCmd.Flags()
	f.StringVar(&similarityFlags.metaPath, "meta", "transcripts_clean.csv", "Transcript metadata CSV (source_file,ticker,period)")
	f.StringVar(&similarityFlags.embPath, "embeddings", "document_embeddings.csv", "Embedding export CSV (doc_id,embedding,ticker)")
	f.StringVar(&similarityFlags.outPath, "out", "similarity_by_period.csv", "Output CSV path")
	f.StringVar(&similarityFlags.tickerA, "ticker-a", "", "First ticker (default from config)")
	f.StringVar(&similarityFlags.tickerB, "ticker-b", "", "Second ticker (default from config)")

	rootCmd.AddCommand(similarityCmd)
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ticker-a") {
		cfg.TickerA = similarityFlags.tickerA
	}
	if cmd.Flags().Changed("ticker-b") {
		cfg.TickerB = similarityFlags.tickerB
	}

	meta, err := similarity.LoadMetadata(similarityFlags.metaPath)
	if err != nil {
		return err
	}
	embs, err := similarity.LoadEmbeddings(similarityFlags.embPath)
	if err != nil {
		return err
	}

	records := similarity.Compute(meta, embs, cfg.TickerA, cfg.TickerB)

	out, err := os.Create(similarityFlags.outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", similarityFlags.outPath, err)
	}
	defer out.Close()

	if err := similarity.WriteCSV(out, records); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", similarityFlags.outPath, err)
	}

	if humanOutput {
		outputHuman("wrote %d similarity records (%s vs %s) to %s",
			len(records), cfg.TickerA, cfg.TickerB, similarityFlags.outPath)
		for _, r := range records {
			outputHuman("  %s  %.4f", r.Period, r.Cosine)
		}
		return nil
	}
	return outputJSON(records)
}
