package similarity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseVector parses a literal float list like "[0.1, -0.2, 3]".
func ParseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("embedding is not a bracketed list: %.40q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []float64{}, nil
	}

	parts := strings.Split(inner, ",")
	vec := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing embedding component %d: %w", i, err)
		}
		vec[i] = v
	}
	return vec, nil
}

// columnIndex locates a header column by name, case-insensitively.
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", name, header)
}

// LoadMetadata reads a transcript metadata CSV with at least
// source_file, ticker and period columns.
func LoadMetadata(path string) ([]MetaRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading metadata header: %w", err)
	}
	fileIdx, err := columnIndex(header, "source_file")
	if err != nil {
		return nil, err
	}
	tickerIdx, err := columnIndex(header, "ticker")
	if err != nil {
		return nil, err
	}
	periodIdx, err := columnIndex(header, "period")
	if err != nil {
		return nil, err
	}

	var rows []MetaRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading metadata row: %w", err)
		}
		rows = append(rows, MetaRow{
			SourceFile: record[fileIdx],
			Ticker:     record[tickerIdx],
			Period:     record[periodIdx],
		})
	}
	return rows, nil
}

// LoadEmbeddings reads an embedding export CSV with doc_id, embedding
// and ticker columns. Rows with an empty embedding are dropped, mirroring
// the non-null filter applied after the metadata join.
func LoadEmbeddings(path string) ([]EmbeddingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening embeddings: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading embeddings header: %w", err)
	}
	docIdx, err := columnIndex(header, "doc_id")
	if err != nil {
		return nil, err
	}
	embIdx, err := columnIndex(header, "embedding")
	if err != nil {
		return nil, err
	}
	tickerIdx, err := columnIndex(header, "ticker")
	if err != nil {
		return nil, err
	}

	var rows []EmbeddingRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading embeddings row: %w", err)
		}
		raw := strings.TrimSpace(record[embIdx])
		if raw == "" {
			continue
		}
		vec, err := ParseVector(raw)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", record[docIdx], err)
		}
		rows = append(rows, EmbeddingRow{
			DocID:  record[docIdx],
			Vector: vec,
			Ticker: record[tickerIdx],
		})
	}
	return rows, nil
}

// WriteCSV writes similarity records as period,ticker1,ticker2,
// cosine_similarity rows.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"period", "ticker1", "ticker2", "cosine_similarity"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Period,
			rec.TickerA,
			rec.TickerB,
			strconv.FormatFloat(rec.Cosine, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", rec.Period, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
