// Package comovement computes rolling price-return correlation between
// two tickers and aggregates it by calendar quarter.
package comovement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors returned by price loading and correlation.
var (
	ErrNotFound            = errors.New("price file not found")
	ErrEmptyResult         = errors.New("no prices after filtering")
	ErrInsufficientOverlap = errors.New("not enough overlapping return observations for window")
)

// Series is a date-ordered value series.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Values) }

// closeColumns are the accepted price columns, in preference order.
var closeColumns = []string{"Adj Close", "AdjClose", "Close"}

// LoadPriceSeries reads a daily OHLC(V) CSV with a Date column,
// preferring an adjusted-close field and falling back to raw close.
// Zero start/end times mean no bound; bounds are inclusive.
func LoadPriceSeries(path string, start, end time.Time) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Series{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Series{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return Series{}, fmt.Errorf("reading header of %s: %w", path, err)
	}

	dateIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "Date") {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return Series{}, fmt.Errorf("%s: no Date column", path)
	}

	priceIdx := -1
	for _, want := range closeColumns {
		for i, h := range header {
			if strings.TrimSpace(h) == want {
				priceIdx = i
				break
			}
		}
		if priceIdx >= 0 {
			break
		}
	}
	if priceIdx < 0 {
		return Series{}, fmt.Errorf("%s: expected 'Adj Close' or 'Close' column", path)
	}

	var s Series
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("reading %s: %w", path, err)
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return Series{}, fmt.Errorf("%s: parsing date %q: %w", path, record[dateIdx], err)
		}
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[priceIdx]), 64)
		if err != nil {
			return Series{}, fmt.Errorf("%s: parsing price on %s: %w", path, record[dateIdx], err)
		}

		s.Dates = append(s.Dates, date)
		s.Values = append(s.Values, price)
	}

	if s.Len() == 0 {
		return Series{}, fmt.Errorf("%w: %s", ErrEmptyResult, path)
	}

	sort.Sort(byDate(s))
	return s, nil
}

// byDate sorts a Series in place by date.
type byDate Series

func (s byDate) Len() int           { return len(s.Dates) }
func (s byDate) Less(i, j int) bool { return s.Dates[i].Before(s.Dates[j]) }
func (s byDate) Swap(i, j int) {
	s.Dates[i], s.Dates[j] = s.Dates[j], s.Dates[i]
	s.Values[i], s.Values[j] = s.Values[j], s.Values[i]
}

// LogReturns computes daily log returns ln(p[t]) - ln(p[t-1]). The
// first observation has no return and is dropped.
func LogReturns(s Series) Series {
	if s.Len() < 2 {
		return Series{}
	}
	out := Series{
		Dates:  make([]time.Time, 0, s.Len()-1),
		Values: make([]float64, 0, s.Len()-1),
	}
	for i := 1; i < s.Len(); i++ {
		out.Dates = append(out.Dates, s.Dates[i])
		out.Values = append(out.Values, math.Log(s.Values[i])-math.Log(s.Values[i-1]))
	}
	return out
}
