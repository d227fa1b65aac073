package comovement

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// fisherClip bounds correlations before the z-transform so the log
// stays finite.
const fisherClip = 0.999999

// FisherZ applies the Fisher z-transform 0.5*ln((1+r)/(1-r)), clipping
// r to [-fisherClip, fisherClip] first.
func FisherZ(r float64) float64 {
	r = math.Max(-fisherClip, math.Min(fisherClip, r))
	return 0.5 * math.Log((1+r)/(1-r))
}

// FisherInv is the inverse transform, tanh(z).
func FisherInv(z float64) float64 {
	return math.Tanh(z)
}

// QuarterLabel maps a date to its calendar quarter string, e.g. 2019Q3.
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
}

// alignReturns inner-joins two return series on date.
func alignReturns(a, b Series) (dates []time.Time, ra, rb []float64) {
	byDate := make(map[time.Time]float64, b.Len())
	for i, d := range b.Dates {
		byDate[d] = b.Values[i]
	}
	for i, d := range a.Dates {
		v, ok := byDate[d]
		if !ok {
			continue
		}
		dates = append(dates, d)
		ra = append(ra, a.Values[i])
		rb = append(rb, v)
	}
	return dates, ra, rb
}

// pearson computes the Pearson correlation of two equal-length slices.
// A zero variance on either side yields NaN, matching the rolling
// correlation's degenerate-window convention.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	return cov / math.Sqrt(varX*varY)
}

// RollingCorrelation computes the trailing-window Pearson correlation
// of two return series over their date intersection. Each value is
// labelled by its window-end date. The first window-1 positions have no
// value; windows with zero variance produce NaN and are dropped. Fails
// with ErrInsufficientOverlap when fewer than window overlapping
// observations exist in total.
func RollingCorrelation(retA, retB Series, window int) (Series, error) {
	if window < 2 {
		return Series{}, fmt.Errorf("rolling window must be at least 2, got %d", window)
	}

	dates, ra, rb := alignReturns(retA, retB)
	if len(dates) < window {
		return Series{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientOverlap, window, len(dates))
	}

	var out Series
	for end := window; end <= len(dates); end++ {
		rho := pearson(ra[end-window:end], rb[end-window:end])
		if math.IsNaN(rho) {
			continue
		}
		out.Dates = append(out.Dates, dates[end-1])
		out.Values = append(out.Values, rho)
	}
	return out, nil
}

// QuarterAggregate is the per-quarter summary of rolling correlations.
// ImpliedRho is tanh of the mean z and is intentionally not equal to
// MeanRho: Fisher averaging is nonlinear.
type QuarterAggregate struct {
	Quarter    string  `json:"quarter"`
	MeanRho    float64 `json:"rho_mean"`
	MeanZ      float64 `json:"z_mean"`
	ImpliedRho float64 `json:"rho_from_mean_z"`
	Windows    int     `json:"n_windows"`
}

// AggregateByQuarter buckets rolling correlations by the quarter of
// their window-end dates and averages raw correlation and Fisher z per
// quarter. A single quarter may aggregate many overlapping windows.
// Results are sorted ascending by quarter label.
func AggregateByQuarter(rho Series) []QuarterAggregate {
	type accum struct {
		sumRho float64
		sumZ   float64
		n      int
	}
	buckets := make(map[string]*accum)
	for i, d := range rho.Dates {
		q := QuarterLabel(d)
		a, ok := buckets[q]
		if !ok {
			a = &accum{}
			buckets[q] = a
		}
		a.sumRho += rho.Values[i]
		a.sumZ += FisherZ(rho.Values[i])
		a.n++
	}

	quarters := make([]string, 0, len(buckets))
	for q := range buckets {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)

	out := make([]QuarterAggregate, 0, len(quarters))
	for _, q := range quarters {
		a := buckets[q]
		meanZ := a.sumZ / float64(a.n)
		out = append(out, QuarterAggregate{
			Quarter:    q,
			MeanRho:    a.sumRho / float64(a.n),
			MeanZ:      meanZ,
			ImpliedRho: FisherInv(meanZ),
			Windows:    a.n,
		})
	}
	return out
}
