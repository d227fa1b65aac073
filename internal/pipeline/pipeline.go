// Package pipeline orchestrates extraction, vectorization and storage
// of transcript embeddings.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/narrsim/narrsim/internal/transcript"
	"github.com/narrsim/narrsim/internal/vectorizer"
	"github.com/narrsim/narrsim/internal/vectorstore"
)

// ErrNoDocuments indicates the data directory yielded nothing to ingest.
var ErrNoDocuments = errors.New("no documents extracted")

// ProgressReporter receives progress updates during ingestion.
type ProgressReporter interface {
	OnProgress(stage string, current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(stage string, current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(stage string, current, total int) {
	f(stage, current, total)
}

// Stats summarizes one ingest run.
type Stats struct {
	Documents  int    `json:"documents"`
	Tickers    int    `json:"tickers"`
	Dimension  int    `json:"dimension"`
	Vectorizer string `json:"vectorizer"`
}

// Ingester runs the extract → vectorize → store pipeline.
type Ingester struct {
	vec      vectorizer.Vectorizer
	store    *vectorstore.Store
	progress ProgressReporter
}

// NewIngester creates an ingester over a vectorizer and an open store.
// The caller owns the store handle and closes it after the run.
func NewIngester(vec vectorizer.Vectorizer, store *vectorstore.Store) *Ingester {
	return &Ingester{vec: vec, store: store}
}

// SetProgressReporter sets the progress reporter.
func (g *Ingester) SetProgressReporter(reporter ProgressReporter) {
	g.progress = reporter
}

func (g *Ingester) report(stage string, current, total int) {
	if g.progress != nil {
		g.progress.OnProgress(stage, current, total)
	}
}

// Run fits the vectorizer on the corpus, transforms every document and
// bulk-inserts the vectors grouped by ticker, one transaction per
// ticker group.
func (g *Ingester) Run(ctx context.Context, docs []transcript.Document) (Stats, error) {
	if len(docs) == 0 {
		return Stats{}, ErrNoDocuments
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	g.report("fit", 0, len(docs))
	if err := g.vec.Fit(ctx, texts); err != nil {
		return Stats{}, fmt.Errorf("fitting vectorizer: %w", err)
	}

	g.report("transform", 0, len(docs))
	vectors, err := g.vec.Transform(ctx, texts)
	if err != nil {
		return Stats{}, fmt.Errorf("vectorizing corpus: %w", err)
	}
	if len(vectors) != len(docs) {
		return Stats{}, fmt.Errorf("vectorizer returned %d vectors for %d documents", len(vectors), len(docs))
	}

	// Group indices by ticker, preserving first-appearance order so
	// insertion order is deterministic.
	var tickers []string
	byTicker := make(map[string][]int)
	for i, d := range docs {
		if _, ok := byTicker[d.Ticker]; !ok {
			tickers = append(tickers, d.Ticker)
		}
		byTicker[d.Ticker] = append(byTicker[d.Ticker], i)
	}

	for n, ticker := range tickers {
		indices := byTicker[ticker]
		docIDs := make([]string, len(indices))
		contents := make([]string, len(indices))
		periods := make([]string, len(indices))
		vecs := make([][]float32, len(indices))
		for j, i := range indices {
			docIDs[j] = docs[i].DocID
			contents[j] = docs[i].Text
			periods[j] = docs[i].Period
			vecs[j] = vectors[i]
		}

		if err := g.store.InsertDocuments(ticker, docIDs, contents, periods, vecs); err != nil {
			return Stats{}, fmt.Errorf("storing %s batch: %w", ticker, err)
		}
		g.report("store", n+1, len(tickers))
	}

	return Stats{
		Documents:  len(docs),
		Tickers:    len(tickers),
		Dimension:  g.vec.Dim(),
		Vectorizer: g.vec.Name(),
	}, nil
}
