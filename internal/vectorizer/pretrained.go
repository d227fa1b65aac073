package vectorizer

import (
	"context"
	"fmt"
	"math"

	"github.com/narrsim/narrsim/internal/embedding"
)

// Pretrained wraps a pretrained sentence-embedding backend. Fit is a
// no-op; the dimension is the model's native width, known at
// construction.
type Pretrained struct {
	provider  embedding.Provider
	normalize bool
}

// availabilityChecker is implemented by providers that can probe their
// backing runtime before first use.
type availabilityChecker interface {
	IsAvailable(ctx context.Context) error
}

// NewPretrained constructs the pretrained variant. Construction probes
// the backend and fails with an error wrapping embedding.ErrUnavailable
// when the runtime cannot be reached.
func NewPretrained(ctx context.Context, provider embedding.Provider, normalize bool) (*Pretrained, error) {
	if checker, ok := provider.(availabilityChecker); ok {
		if err := checker.IsAvailable(ctx); err != nil {
			return nil, fmt.Errorf("constructing pretrained vectorizer (%s): %w", provider.ModelName(), err)
		}
	}
	return &Pretrained{provider: provider, normalize: normalize}, nil
}

// Fit is a no-op for pretrained models.
func (p *Pretrained) Fit(ctx context.Context, texts []string) error {
	return nil
}

// Transform embeds each text via the backend, optionally L2-normalizing
// each vector.
func (p *Pretrained) Transform(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embs, err := p.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(embs))
	for i, emb := range embs {
		vec := emb.Vector
		if p.normalize {
			vec = l2Normalize(vec)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dim returns the model's native dimension.
func (p *Pretrained) Dim() int {
	return p.provider.Dimensions()
}

// Name returns the backing model name.
func (p *Pretrained) Name() string {
	return p.provider.ModelName()
}

// l2Normalize scales the vector to unit length. Zero vectors are
// returned unchanged.
func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
