package vectorstore

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportCSV writes every stored embedding as doc_id,embedding,ticker
// rows in insertion order. This is the interchange file the similarity
// engine joins against transcript metadata.
func (s *Store) ExportCSV(w io.Writer) error {
	rows, err := s.db.Query("SELECT doc_id, embedding, ticker FROM document_embeddings ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"doc_id", "embedding", "ticker"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for rows.Next() {
		var docID, emb, ticker string
		if err := rows.Scan(&docID, &emb, &ticker); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		if err := cw.Write([]string{docID, emb, ticker}); err != nil {
			return fmt.Errorf("writing row for %s: %w", docID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
