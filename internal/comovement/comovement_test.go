package comovement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDetectPeriodColumn(t *testing.T) {
	tests := []struct {
		header []string
		want   int
	}{
		{[]string{"period", "x"}, 0},
		{[]string{"x", "Quarter"}, 1},
		{[]string{"label", "value"}, 0}, // fallback: first column
		{[]string{"x", "PERIOD", "quarter"}, 1},
	}
	for _, tt := range tests {
		if got := detectPeriodColumn(tt.header); got != tt.want {
			t.Errorf("detectPeriodColumn(%v) = %d, want %d", tt.header, got, tt.want)
		}
	}
}

func TestMergePeriods_LeftJoin(t *testing.T) {
	in := strings.NewReader("period,cosine_similarity\n2019Q3,0.9\n2019Q4,0.8\n")
	aggs := []QuarterAggregate{
		{Quarter: "2019Q3", MeanRho: 0.5, MeanZ: 0.55, ImpliedRho: 0.5005, Windows: 60},
	}

	var out bytes.Buffer
	if err := MergePeriods(in, &out, aggs, "KO-PEP", 120); err != nil {
		t.Fatalf("MergePeriods failed: %v", err)
	}

	records, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}

	header := records[0]
	wantHeader := []string{"period", "cosine_similarity", "rho_mean", "z_mean",
		"n_windows", "rho_from_mean_z", "co_mov_tickers", "rolling_window_days"}
	for i, h := range wantHeader {
		if header[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	matched := records[1]
	if matched[2] != "0.5" || matched[4] != "60" {
		t.Errorf("matched row = %v", matched)
	}

	// Unmatched period keeps empty aggregates but the constant columns.
	unmatched := records[2]
	if unmatched[2] != "" || unmatched[3] != "" || unmatched[4] != "" || unmatched[5] != "" {
		t.Errorf("unmatched row should have empty aggregates: %v", unmatched)
	}
	if unmatched[6] != "KO-PEP" || unmatched[7] != "120" {
		t.Errorf("constant columns missing on unmatched row: %v", unmatched)
	}
}

// writePriceFile emits n trading days of synthetic prices starting at
// 2019-07-01, with b perfectly tracking 2x a's daily log return.
func writePriceFixtures(t *testing.T, dir string, n int) {
	t.Helper()
	start := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)

	var a, b strings.Builder
	a.WriteString("Date,Adj Close\n")
	b.WriteString("Date,Adj Close\n")
	pa, pb := 100.0, 50.0
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		fmt.Fprintf(&a, "%s,%g\n", d, pa)
		fmt.Fprintf(&b, "%s,%g\n", d, pb)
		r := 0.01 * math.Sin(float64(i)) // varying daily return
		pa *= math.Exp(r)
		pb *= math.Exp(2 * r)
	}
	if err := os.WriteFile(filepath.Join(dir, "KO.csv"), []byte(a.String()), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "PEP.csv"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writePriceFixtures(t, dir, 40)

	inPath := filepath.Join(dir, "periods.csv")
	if err := os.WriteFile(inPath, []byte("period,sim\n2019Q3,0.9\n2031Q1,0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "merged.csv")

	aggs, err := Run(Options{
		InputCSV:  inPath,
		OutputCSV: outPath,
		PriceDir:  dir,
		FileA:     "KO.csv",
		FileB:     "PEP.csv",
		Window:    20,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(aggs) == 0 {
		t.Fatal("no quarter aggregates produced")
	}
	// b's returns are exactly 2x a's: every rolling correlation is 1.
	for _, a := range aggs {
		if math.Abs(a.MeanRho-1) > 1e-6 {
			t.Errorf("%s: MeanRho = %v, want 1", a.Quarter, a.MeanRho)
		}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "KO-PEP") {
		t.Errorf("matched row missing tickers label: %q", lines[1])
	}
	// 2031Q1 has no price coverage: aggregates empty.
	if !strings.Contains(lines[2], ",,,,") {
		t.Errorf("unmatched row should carry empty aggregates: %q", lines[2])
	}
}

func TestRun_InsufficientWindowSurfaces(t *testing.T) {
	dir := t.TempDir()
	writePriceFixtures(t, dir, 5)

	inPath := filepath.Join(dir, "periods.csv")
	if err := os.WriteFile(inPath, []byte("period\n2019Q3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(Options{
		InputCSV:  inPath,
		OutputCSV: filepath.Join(dir, "out.csv"),
		PriceDir:  dir,
		FileA:     "KO.csv",
		FileB:     "PEP.csv",
		Window:    120,
	})
	if err == nil {
		t.Fatal("expected failure, not an empty-but-successful result")
	}
}
