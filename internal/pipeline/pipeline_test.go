package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/narrsim/narrsim/internal/transcript"
	"github.com/narrsim/narrsim/internal/vectorizer"
	"github.com/narrsim/narrsim/internal/vectorstore"
)

func testDocs() []transcript.Document {
	return []transcript.Document{
		{Ticker: "KO", DocID: "ko_q3.pdf", Text: "revenue grew in the beverage segment", Period: "Q3 2019"},
		{Ticker: "PEP", DocID: "pep_q3.pdf", Text: "snacks revenue declined this quarter", Period: "Q3 2019"},
		{Ticker: "KO", DocID: "ko_q4.pdf", Text: "marketing spend drove beverage growth", Period: "Q4 2019"},
	}
}

func TestIngester_Run(t *testing.T) {
	vec := vectorizer.NewTFIDF(32)
	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "test.db"), vec.Dim())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	var stages []string
	ing := NewIngester(vec, store)
	ing.SetProgressReporter(ProgressFunc(func(stage string, current, total int) {
		stages = append(stages, stage)
	}))

	stats, err := ing.Run(context.Background(), testDocs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Documents != 3 {
		t.Errorf("Documents = %d, want 3", stats.Documents)
	}
	if stats.Tickers != 2 {
		t.Errorf("Tickers = %d, want 2", stats.Tickers)
	}
	if stats.Dimension != 32 {
		t.Errorf("Dimension = %d, want 32", stats.Dimension)
	}
	if stats.Vectorizer != "tfidf" {
		t.Errorf("Vectorizer = %s, want tfidf", stats.Vectorizer)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("stored rows = %d, want 3", n)
	}

	if len(stages) == 0 || stages[0] != "fit" {
		t.Errorf("stages = %v, want fit first", stages)
	}
}

func TestIngester_Run_NoDocuments(t *testing.T) {
	vec := vectorizer.NewTFIDF(16)
	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "test.db"), vec.Dim())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = NewIngester(vec, store).Run(context.Background(), nil)
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("err = %v, want ErrNoDocuments", err)
	}
}

func TestIngester_Run_StoreDimensionMismatch(t *testing.T) {
	vec := vectorizer.NewTFIDF(32)
	// Store expects a different width than the vectorizer produces.
	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "test.db"), 8)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = NewIngester(vec, store).Run(context.Background(), testDocs())
	if !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}

	n, _ := store.Count()
	if n != 0 {
		t.Errorf("stored rows = %d, want 0 after validation failure", n)
	}
}
