package comovement

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// periodColumnCandidates are tried in order when auto-detecting the
// period column of a caller-supplied table; the first column is the
// fallback.
var periodColumnCandidates = []string{"period", "Period", "PERIOD", "quarter", "Quarter", "QUARTER"}

// detectPeriodColumn returns the index of the period column.
func detectPeriodColumn(header []string) int {
	for _, want := range periodColumnCandidates {
		for i, h := range header {
			if strings.TrimSpace(h) == want {
				return i
			}
		}
	}
	return 0
}

// MergePeriods left-joins per-quarter aggregates onto an arbitrary
// period-labelled CSV table, leaving unmatched periods with empty
// aggregate fields. tickers and window annotate every row.
func MergePeriods(r io.Reader, w io.Writer, aggs []QuarterAggregate, tickers string, window int) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("reading period table header: %w", err)
	}
	periodIdx := detectPeriodColumn(header)

	byQuarter := make(map[string]QuarterAggregate, len(aggs))
	for _, a := range aggs {
		byQuarter[a.Quarter] = a
	}

	cw := csv.NewWriter(w)
	outHeader := append(append([]string{}, header...),
		"rho_mean", "z_mean", "n_windows", "rho_from_mean_z",
		"co_mov_tickers", "rolling_window_days")
	if err := cw.Write(outHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	formatFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading period table row: %w", err)
		}

		row := append([]string{}, record...)
		if a, ok := byQuarter[strings.TrimSpace(record[periodIdx])]; ok {
			row = append(row,
				formatFloat(a.MeanRho),
				formatFloat(a.MeanZ),
				strconv.Itoa(a.Windows),
				formatFloat(a.ImpliedRho),
			)
		} else {
			row = append(row, "", "", "", "")
		}
		row = append(row, tickers, strconv.Itoa(window))

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Options configures a full co-movement run.
type Options struct {
	InputCSV  string
	OutputCSV string
	PriceDir  string
	FileA     string
	FileB     string
	Window    int
	Start     time.Time // zero means unbounded
	End       time.Time // zero means unbounded
}

// tickersLabel derives the KO-PEP style annotation from the price file
// names.
func (o Options) tickersLabel() string {
	stem := func(name string) string {
		return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return stem(o.FileA) + "-" + stem(o.FileB)
}

// Run loads both price files, computes the rolling correlation series,
// aggregates it by quarter and merges the aggregates into the input
// period table, writing the enriched CSV.
func Run(opts Options) ([]QuarterAggregate, error) {
	in, err := os.Open(opts.InputCSV)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: input CSV %s", ErrNotFound, opts.InputCSV)
		}
		return nil, fmt.Errorf("opening input CSV: %w", err)
	}
	defer in.Close()

	pxA, err := LoadPriceSeries(filepath.Join(opts.PriceDir, opts.FileA), opts.Start, opts.End)
	if err != nil {
		return nil, err
	}
	pxB, err := LoadPriceSeries(filepath.Join(opts.PriceDir, opts.FileB), opts.Start, opts.End)
	if err != nil {
		return nil, err
	}

	rho, err := RollingCorrelation(LogReturns(pxA), LogReturns(pxB), opts.Window)
	if err != nil {
		return nil, err
	}
	aggs := AggregateByQuarter(rho)

	out, err := os.Create(opts.OutputCSV)
	if err != nil {
		return nil, fmt.Errorf("creating output CSV: %w", err)
	}
	defer out.Close()

	if err := MergePeriods(in, out, aggs, opts.tickersLabel(), opts.Window); err != nil {
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing output CSV: %w", err)
	}
	return aggs, nil
}
