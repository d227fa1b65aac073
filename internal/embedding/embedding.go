// Package embedding provides vector embedding generation for text.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding backend failed to construct or
// cannot be reached. It is always propagated to the caller, never
// silently substituted.
var ErrUnavailable = errors.New("embedding backend unavailable")

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// EmbedBatch generates one embedding per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
