package vectorizer

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultTFIDFDim is the fallback vectorizer's fixed output width.
const DefaultTFIDFDim = 512

// TFIDF is the frequency-statistics fallback: a fixed-vocabulary
// term-weighting vectorizer with deterministic, capped dimension. The
// dimension is fixed at construction; when the fitted vocabulary is
// smaller than the cap, trailing components stay zero.
type TFIDF struct {
	maxFeatures int
	vocabulary  map[string]int
	idf         []float64
	fitted      bool

	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewTFIDF creates an unfitted TF-IDF vectorizer with the given
// dimension cap. A non-positive cap uses DefaultTFIDFDim.
func NewTFIDF(maxFeatures int) *TFIDF {
	if maxFeatures <= 0 {
		maxFeatures = DefaultTFIDFDim
	}
	return &TFIDF{
		maxFeatures:  maxFeatures,
		tokenPattern: regexp.MustCompile(`[a-z][a-z']*`),
		stopwords:    defaultStopwords(),
	}
}

// Fit builds the vocabulary and IDF weights from the corpus, keeping the
// maxFeatures most frequent terms after stopword exclusion.
func (t *TFIDF) Fit(ctx context.Context, texts []string) error {
	df := make(map[string]int)    // document frequency
	total := make(map[string]int) // corpus term frequency, for the cap

	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range t.tokenize(text) {
			total[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	// Most frequent first; lexicographic tie-break keeps the cut
	// deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if total[terms[i]] != total[terms[j]] {
			return total[terms[i]] > total[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > t.maxFeatures {
		terms = terms[:t.maxFeatures]
	}
	sort.Strings(terms)

	t.vocabulary = make(map[string]int, len(terms))
	t.idf = make([]float64, len(terms))
	n := float64(len(texts))
	for i, term := range terms {
		t.vocabulary[term] = i
		// Smoothed IDF
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	t.fitted = true
	return nil
}

// Transform maps each text to a TF-IDF vector of width Dim, L2
// normalized. Fails with ErrNotFitted before Fit.
func (t *TFIDF) Transform(ctx context.Context, texts []string) ([][]float32, error) {
	if !t.fitted {
		return nil, ErrNotFitted
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = t.transformOne(text)
	}
	return vectors, nil
}

func (t *TFIDF) transformOne(text string) []float32 {
	weights := make([]float64, t.maxFeatures)
	for _, tok := range t.tokenize(text) {
		if idx, ok := t.vocabulary[tok]; ok {
			weights[idx] += t.idf[idx]
		}
	}

	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	norm := math.Sqrt(sum)

	vec := make([]float32, t.maxFeatures)
	if norm == 0 {
		return vec
	}
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec
}

// Dim returns the configured dimension cap, fixed at construction.
func (t *TFIDF) Dim() int {
	return t.maxFeatures
}

// Name identifies the variant.
func (t *TFIDF) Name() string {
	return "tfidf"
}

func (t *TFIDF) tokenize(text string) []string {
	raw := t.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := t.stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// defaultStopwords is the common-word exclusion list applied during
// fitting and transformation.
func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else",
		"for", "to", "of", "in", "on", "at", "by", "with", "as", "is",
		"are", "was", "were", "be", "been", "being", "it", "its",
		"this", "that", "these", "those", "from", "up", "down", "over",
		"under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very",
		"can", "will", "just", "should", "now", "we", "our", "you",
		"your", "they", "their", "he", "she", "his", "her", "i", "my",
		"me", "us", "them", "what", "which", "who", "whom", "when",
		"where", "why", "how", "all", "any", "both", "each", "few",
		"more", "most", "other", "some", "no", "nor", "not", "only",
		"do", "does", "did", "have", "has", "had", "having", "would",
		"could", "there", "here", "also",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
