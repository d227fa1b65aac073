package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Vectorizer.TFIDFDim != DefaultTFIDFDim {
		t.Errorf("TFIDFDim = %d, want %d", cfg.Vectorizer.TFIDFDim, DefaultTFIDFDim)
	}
	if cfg.Comovement.Window != DefaultRollingWindow {
		t.Errorf("Window = %d, want %d", cfg.Comovement.Window, DefaultRollingWindow)
	}
	if !cfg.Vectorizer.PreferPretrained {
		t.Error("PreferPretrained should default to true")
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrsim.yaml")
	content := "ticker_a: AAA\nticker_b: BBB\nvectorizer:\n  prefer_pretrained: false\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TickerA != "AAA" || cfg.TickerB != "BBB" {
		t.Errorf("tickers = %s/%s, want AAA/BBB", cfg.TickerA, cfg.TickerB)
	}
	if cfg.Vectorizer.PreferPretrained {
		t.Error("PreferPretrained should be false")
	}
	if cfg.Vectorizer.TFIDFDim != DefaultTFIDFDim {
		t.Errorf("TFIDFDim = %d, want default %d", cfg.Vectorizer.TFIDFDim, DefaultTFIDFDim)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "narrsim.yaml")

	want := Default()
	want.DataDir = "/tmp/transcripts"
	want.Comovement.Window = 60
	if err := want.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.DataDir != want.DataDir {
		t.Errorf("DataDir = %s, want %s", got.DataDir, want.DataDir)
	}
	if got.Comovement.Window != 60 {
		t.Errorf("Window = %d, want 60", got.Comovement.Window)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("ticker_a: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
