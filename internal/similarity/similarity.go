// Package similarity joins transcript metadata to document embeddings
// and computes a period-indexed cosine similarity series between two
// tickers.
package similarity

import (
	"math"
	"sort"
	"strings"
)

// MetaRow is one transcript metadata record.
type MetaRow struct {
	SourceFile string
	Ticker     string
	Period     string
}

// EmbeddingRow is one exported document embedding.
type EmbeddingRow struct {
	DocID  string
	Vector []float64
	Ticker string
}

// Record is the similarity between the two tickers' mean vectors for
// one period.
type Record struct {
	Period  string  `json:"period"`
	TickerA string  `json:"ticker1"`
	TickerB string  `json:"ticker2"`
	Cosine  float64 `json:"cosine_similarity"`
}

// Cosine computes the cosine similarity between two vectors. A zero
// norm on either side yields 0, never NaN; mismatched lengths yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

// firmAccum accumulates document vectors for one (period, ticker) cell.
type firmAccum struct {
	sum   []float64
	count int
}

func (a *firmAccum) add(vec []float64) {
	if a.sum == nil {
		a.sum = make([]float64, len(vec))
	}
	for i, v := range vec {
		a.sum[i] += v
	}
	a.count++
}

func (a *firmAccum) mean() []float64 {
	out := make([]float64, len(a.sum))
	for i, v := range a.sum {
		out[i] = v / float64(a.count)
	}
	return out
}

// Compute joins metadata to embeddings on a lower-cased document id,
// groups surviving rows by period, and emits one Record per period in
// which both tickers have at least one document, sorted ascending by
// period label. Periods covering only one ticker are skipped, not
// null-filled.
//
// The join key is the lower-cased filename only; identical filenames
// across different periods collide, exactly as in the upstream data
// preparation.
func Compute(meta []MetaRow, embs []EmbeddingRow, tickerA, tickerB string) []Record {
	vectors := make(map[string][]float64, len(embs))
	for _, e := range embs {
		if len(e.Vector) == 0 {
			continue
		}
		vectors[strings.ToLower(e.DocID)] = e.Vector
	}

	// period -> ticker -> accumulator. Meta order is the only iteration
	// order that touches floating-point summation, so identical inputs
	// reproduce identical sums.
	groups := make(map[string]map[string]*firmAccum)
	for _, m := range meta {
		vec, ok := vectors[strings.ToLower(m.SourceFile)]
		if !ok {
			continue
		}
		byTicker, ok := groups[m.Period]
		if !ok {
			byTicker = make(map[string]*firmAccum)
			groups[m.Period] = byTicker
		}
		acc, ok := byTicker[m.Ticker]
		if !ok {
			acc = &firmAccum{}
			byTicker[m.Ticker] = acc
		}
		acc.add(vec)
	}

	periods := make([]string, 0, len(groups))
	for period, byTicker := range groups {
		if byTicker[tickerA] == nil || byTicker[tickerB] == nil {
			continue
		}
		periods = append(periods, period)
	}
	// Lexicographic order coincides with chronological for YYYYQ# labels.
	sort.Strings(periods)

	records := make([]Record, 0, len(periods))
	for _, period := range periods {
		byTicker := groups[period]
		records = append(records, Record{
			Period:  period,
			TickerA: tickerA,
			TickerB: tickerB,
			Cosine:  Cosine(byTicker[tickerA].mean(), byTicker[tickerB].mean()),
		})
	}
	return records
}
