// Package vectorizer converts batches of document texts into
// fixed-dimension vectors via interchangeable strategies.
package vectorizer

import (
	"context"
	"errors"

	"github.com/narrsim/narrsim/internal/config"
	"github.com/narrsim/narrsim/internal/embedding"
)

// ErrNotFitted indicates Transform was called before Fit.
var ErrNotFitted = errors.New("vectorizer must be fitted before transform")

// Vectorizer maps texts to fixed-length float vectors. Exactly one
// variant is active per pipeline run; Dim is fixed for the instance
// lifetime and known at construction.
type Vectorizer interface {
	// Fit trains backend-specific state from the corpus. A no-op for
	// pretrained variants.
	Fit(ctx context.Context, texts []string) error

	// Transform maps each input text to one vector of width Dim.
	// Fails with ErrNotFitted when called before Fit.
	Transform(ctx context.Context, texts []string) ([][]float32, error)

	// Dim is the fixed output dimension for this instance.
	Dim() int

	// Name identifies the variant ("pretrained" model name or "tfidf").
	Name() string
}

// New selects a vectorizer per the configured preference. When the
// pretrained backend is preferred and fails to construct, the
// construction error is returned as-is: callers wanting resilience must
// catch embedding.ErrUnavailable and construct the TF-IDF variant
// explicitly.
func New(ctx context.Context, cfg config.VectorizerConfig) (Vectorizer, error) {
	if cfg.PreferPretrained {
		provider := embedding.NewOllamaProvider(
			embedding.WithBaseURL(cfg.BackendURL),
			embedding.WithModel(cfg.Model),
			embedding.WithDimensions(cfg.Dimensions),
		)
		v, err := NewPretrained(ctx, provider, cfg.Normalize)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return NewTFIDF(cfg.TFIDFDim), nil
}
