// Package transcript extracts earnings-call documents from a directory
// tree with one subdirectory per ticker.
package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFound indicates a missing input file or directory.
var ErrNotFound = errors.New("not found")

// Document is one extracted transcript. Immutable after extraction.
type Document struct {
	Ticker string `json:"ticker"`
	DocID  string `json:"doc_id"` // source filename
	Text   string `json:"-"`      // full extracted text
	Period string `json:"period"` // "Q3 2019" as found in text, or ""
}

// periodPattern matches the first quarter-year mention in a transcript,
// e.g. "Q3 2019".
var periodPattern = regexp.MustCompile(`Q[1-4] \d{4}`)

// quarterLabelPattern matches the normalized form, e.g. "2019Q3".
var quarterLabelPattern = regexp.MustCompile(`^(\d{4})Q([1-4])$`)

// scanPeriod returns the first quarter-year mention in text, or "".
// A missing period is a data-quality condition, not an error.
func scanPeriod(text string) string {
	return periodPattern.FindString(text)
}

// NormalizePeriod converts "Q3 2019" to "2019Q3". Labels already in
// normalized form pass through; anything else returns "".
func NormalizePeriod(label string) string {
	label = strings.TrimSpace(label)
	if quarterLabelPattern.MatchString(label) {
		return label
	}
	if periodPattern.MatchString(label) && len(label) == 7 {
		return label[3:] + "Q" + label[1:2]
	}
	return ""
}

// buildDocument assembles a Document from extracted text. The second
// return is false when the document yields only whitespace and must be
// dropped.
func buildDocument(ticker, docID, text string) (Document, bool) {
	if strings.TrimSpace(text) == "" {
		return Document{}, false
	}
	return Document{
		Ticker: ticker,
		DocID:  docID,
		Text:   text,
		Period: scanPeriod(text),
	}, true
}

// Walk extracts every PDF under root/<TICKER>/ and calls fn once per
// surviving document, in sorted directory and filename order. It is a
// single forward pass; callers needing multiple passes should use
// Collect.
func Walk(root string, fn func(Document) error) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: data directory %s", ErrNotFound, root)
		}
		return fmt.Errorf("reading data directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ticker := strings.ToUpper(entry.Name())
		dir := filepath.Join(root, entry.Name())

		paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
		if err != nil {
			return fmt.Errorf("listing PDFs for %s: %w", ticker, err)
		}
		sort.Strings(paths)

		for _, path := range paths {
			text, err := ExtractText(path)
			if err != nil {
				return fmt.Errorf("extracting %s (%s): %w", path, ticker, err)
			}
			doc, ok := buildDocument(ticker, filepath.Base(path), text)
			if !ok {
				continue
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
	}

	return nil
}

// Collect materializes the Walk sequence into a slice.
func Collect(root string) ([]Document, error) {
	var docs []Document
	err := Walk(root, func(d Document) error {
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
