package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestScanPeriod(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "first match wins",
			text: "Coca-Cola Q3 2019 Earnings Call. Compare with Q2 2019.",
			want: "Q3 2019",
		},
		{
			name: "no match",
			text: "Annual shareholder letter with no quarter mention",
			want: "",
		},
		{
			name: "invalid quarter digit ignored",
			text: "Q5 2019 then Q1 2020",
			want: "Q1 2020",
		},
		{
			name: "match mid-text",
			text: "prepared remarks\nfor the Q4 2021 period\n",
			want: "Q4 2021",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanPeriod(tt.text); got != tt.want {
				t.Errorf("scanPeriod() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Q3 2019", "2019Q3"},
		{"Q1 2020", "2020Q1"},
		{"2019Q3", "2019Q3"},
		{" Q2 2022 ", "2022Q2"},
		{"", ""},
		{"Q5 2019", ""},
		{"fiscal 2019", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizePeriod(tt.in); got != tt.want {
				t.Errorf("NormalizePeriod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildDocument(t *testing.T) {
	t.Run("whitespace-only text is dropped", func(t *testing.T) {
		_, ok := buildDocument("KO", "empty.pdf", " \n\t\n ")
		if ok {
			t.Error("expected whitespace-only document to be dropped")
		}
	})

	t.Run("period tagged from text", func(t *testing.T) {
		doc, ok := buildDocument("KO", "ko_q3.pdf", "KO Q3 2019 earnings call")
		if !ok {
			t.Fatal("document unexpectedly dropped")
		}
		if doc.Period != "Q3 2019" {
			t.Errorf("Period = %q, want %q", doc.Period, "Q3 2019")
		}
		if doc.Ticker != "KO" || doc.DocID != "ko_q3.pdf" {
			t.Errorf("got %+v", doc)
		}
	})

	t.Run("missing period is empty, not an error", func(t *testing.T) {
		doc, ok := buildDocument("PEP", "notes.pdf", "no quarter here")
		if !ok {
			t.Fatal("document unexpectedly dropped")
		}
		if doc.Period != "" {
			t.Errorf("Period = %q, want empty", doc.Period)
		}
	})
}

func TestWalk_MissingRoot(t *testing.T) {
	err := Walk(filepath.Join(t.TempDir(), "missing"), func(Document) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWalk_IgnoresLooseFiles(t *testing.T) {
	root := t.TempDir()
	// A loose file at the root is not a ticker directory.
	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// An empty ticker directory yields nothing.
	if err := os.Mkdir(filepath.Join(root, "ko"), 0755); err != nil {
		t.Fatal(err)
	}

	var seen int
	if err := Walk(root, func(Document) error { seen++; return nil }); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if seen != 0 {
		t.Errorf("saw %d documents, want 0", seen)
	}
}
