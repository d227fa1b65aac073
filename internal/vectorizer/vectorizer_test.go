package vectorizer

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/narrsim/narrsim/internal/config"
	"github.com/narrsim/narrsim/internal/embedding"
)

// newBackend serves a minimal embedding API returning a fixed raw vector.
func newBackend(t *testing.T, vec []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"nomic-embed-text"}]}`))
		case "/api/embeddings":
			json.NewEncoder(w).Encode(map[string][]float32{"embedding": vec})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNew_PreferredBackendFailureIsSurfaced(t *testing.T) {
	srv := newBackend(t, []float32{1, 0})
	srv.Close() // backend gone before construction

	cfg := config.VectorizerConfig{
		PreferPretrained: true,
		BackendURL:       srv.URL,
		Dimensions:       2,
		TFIDFDim:         64,
	}

	v, err := New(context.Background(), cfg)
	if !errors.Is(err, embedding.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	// The factory must not silently hand back the fallback variant.
	if v != nil {
		t.Errorf("factory returned %T despite backend failure", v)
	}
}

func TestNew_FallbackOnlyWhenNotPreferred(t *testing.T) {
	cfg := config.VectorizerConfig{PreferPretrained: false, TFIDFDim: 128}
	v, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.Name() != "tfidf" {
		t.Errorf("Name() = %s, want tfidf", v.Name())
	}
	if v.Dim() != 128 {
		t.Errorf("Dim() = %d, want 128", v.Dim())
	}
}

func TestNew_PretrainedWhenBackendUp(t *testing.T) {
	srv := newBackend(t, []float32{3, 4})
	defer srv.Close()

	cfg := config.VectorizerConfig{
		PreferPretrained: true,
		BackendURL:       srv.URL,
		Dimensions:       2,
		Normalize:        true,
	}
	v, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := v.Fit(context.Background(), nil); err != nil {
		t.Errorf("Fit should be a no-op, got %v", err)
	}
	if v.Dim() != 2 {
		t.Errorf("Dim() = %d, want 2", v.Dim())
	}

	vecs, err := v.Transform(context.Background(), []string{"q3 remarks"})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	// (3,4) normalized is (0.6,0.8)
	if math.Abs(float64(vecs[0][0])-0.6) > 1e-6 || math.Abs(float64(vecs[0][1])-0.8) > 1e-6 {
		t.Errorf("normalized vector = %v, want [0.6 0.8]", vecs[0])
	}
}

func TestPretrained_TransformWithoutNormalize(t *testing.T) {
	srv := newBackend(t, []float32{3, 4})
	defer srv.Close()

	provider := embedding.NewOllamaProvider(
		embedding.WithBaseURL(srv.URL),
		embedding.WithDimensions(2),
	)
	v, err := NewPretrained(context.Background(), provider, false)
	if err != nil {
		t.Fatalf("NewPretrained failed: %v", err)
	}

	vecs, err := v.Transform(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if vecs[0][0] != 3 || vecs[0][1] != 4 {
		t.Errorf("vector = %v, want raw [3 4]", vecs[0])
	}
}

func TestPretrained_EmptyBatch(t *testing.T) {
	srv := newBackend(t, []float32{1, 0})
	defer srv.Close()

	provider := embedding.NewOllamaProvider(
		embedding.WithBaseURL(srv.URL),
		embedding.WithDimensions(2),
	)
	v, err := NewPretrained(context.Background(), provider, true)
	if err != nil {
		t.Fatalf("NewPretrained failed: %v", err)
	}

	vecs, err := v.Transform(context.Background(), nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("got %d vectors, want 0", len(vecs))
	}
}

func TestL2Normalize_ZeroVector(t *testing.T) {
	vec := []float32{0, 0, 0}
	got := l2Normalize(vec)
	for i, x := range got {
		if x != 0 {
			t.Errorf("component %d = %v, want 0", i, x)
		}
	}
}
