// Package config handles pipeline configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default parameter values.
const (
	DefaultTFIDFDim      = 512
	DefaultRollingWindow = 120
	DefaultStorePath     = "embeddings.db"
	DefaultDataDir       = "data"
	DefaultPriceDir      = "price_store"
	DefaultConfigFile    = "narrsim.yaml"
)

// VectorizerConfig selects and configures the document vectorizer.
type VectorizerConfig struct {
	// PreferPretrained attempts the pretrained embedding backend first.
	// When it fails to construct, the error is surfaced to the caller;
	// there is no silent fallback.
	PreferPretrained bool `yaml:"prefer_pretrained"`

	// TFIDFDim is the fixed output dimension of the TF-IDF fallback.
	TFIDFDim int `yaml:"tfidf_dim"`

	// Normalize applies L2 normalization to pretrained embeddings.
	Normalize bool `yaml:"normalize"`

	// BackendURL is the embedding backend endpoint. Empty means the
	// backend's own default. Overridable via NARRSIM_EMBED_URL.
	BackendURL string `yaml:"backend_url,omitempty"`

	// Model is the embedding model name served by the backend.
	Model string `yaml:"model,omitempty"`

	// Dimensions is the expected vector width of the pretrained model.
	Dimensions int `yaml:"dimensions,omitempty"`
}

// ComovementConfig configures the price co-movement computation.
type ComovementConfig struct {
	Window    int    `yaml:"window"`
	PriceDir  string `yaml:"price_dir"`
	FileA     string `yaml:"file_a"`
	FileB     string `yaml:"file_b"`
	StartDate string `yaml:"start_date,omitempty"` // inclusive, YYYY-MM-DD
	EndDate   string `yaml:"end_date,omitempty"`   // inclusive, YYYY-MM-DD
}

// Config is the root configuration passed into each component at
// construction. There is no process-wide mutable state.
type Config struct {
	// DataDir is the transcript tree root: one subdirectory per ticker.
	DataDir string `yaml:"data_dir"`

	// StorePath is the SQLite vector store file.
	StorePath string `yaml:"store_path"`

	// TickerA and TickerB are the fixed entity pair being compared.
	TickerA string `yaml:"ticker_a"`
	TickerB string `yaml:"ticker_b"`

	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Comovement ComovementConfig `yaml:"comovement"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		StorePath: DefaultStorePath,
		TickerA:   "KO",
		TickerB:   "PEP",
		Vectorizer: VectorizerConfig{
			PreferPretrained: true,
			TFIDFDim:         DefaultTFIDFDim,
			Normalize:        true,
		},
		Comovement: ComovementConfig{
			Window:   DefaultRollingWindow,
			PriceDir: DefaultPriceDir,
			FileA:    "KO.csv",
			FileB:    "PEP.csv",
		},
	}
}

// Load reads configuration from the given path. A missing file returns
// defaults, not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)

	return cfg, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// applyDefaults fills zero fields that must never be zero.
func applyDefaults(c *Config) {
	if c.Vectorizer.TFIDFDim == 0 {
		c.Vectorizer.TFIDFDim = DefaultTFIDFDim
	}
	if c.Comovement.Window == 0 {
		c.Comovement.Window = DefaultRollingWindow
	}
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
}
