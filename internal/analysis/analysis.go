package analysis

import (
	"math"
	"sort"

	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"
)

// MinRegionalSample is the number of qualifying records a region needs
// before its own correlation is computed.
const MinRegionalSample = 3

// RegionTotals aggregates the records of one region
type RegionTotals struct {
	Region             region.Region `json:"region"`
	PlayerCount        int           `json:"player_count"`
	TotalEarnings      float64       `json:"total_earnings"`
	AverageEarnings    float64       `json:"average_earnings"`
	MedianEarnings     float64       `json:"median_earnings"`
	FirstPlaces        int           `json:"first_places"`
	TotalWins          int           `json:"total_wins"`
	MeanEarningsPerWin float64       `json:"mean_earnings_per_win"`
}

// Correlation is a Pearson coefficient over N records.
// R is only meaningful when Defined is true.
type Correlation struct {
	R       float64 `json:"r"`
	N       int     `json:"n"`
	Defined bool    `json:"defined"`
}

// Strength labels the magnitude of the coefficient
func (c Correlation) Strength() Strength {
	if !c.Defined {
		return StrengthUndefined
	}
	return StrengthOf(c.R)
}

// Strength is a coarse label for a correlation coefficient
type Strength string

const (
	StrengthStrong    Strength = "Strong"
	StrengthModerate  Strength = "Moderate"
	StrengthWeak      Strength = "Weak"
	StrengthUndefined Strength = "Undefined"
)

// StrengthOf classifies |r|: above 0.7 is strong, above 0.4 moderate, anything else weak
func StrengthOf(r float64) Strength {
	switch a := math.Abs(r); {
	case a > 0.7:
		return StrengthStrong
	case a > 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// EfficiencyStats describes one region's earnings-per-win distribution
type EfficiencyStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Engine answers metric queries over an immutable record set
type Engine struct {
	records []player.Record
}

// New copies records into a new Engine. Nil entries are ignored.
func New(records []*player.Record) *Engine {
	e := &Engine{records: make([]player.Record, 0, len(records))}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		e.records = append(e.records, *rec)
	}
	return e
}

// Len returns the number of records in the engine
func (e *Engine) Len() int {
	return len(e.records)
}

// RegionalTotals groups records by region.
// Every region is present in the result; a region without players has a zero PlayerCount.
func (e *Engine) RegionalTotals() map[region.Region]RegionTotals {
	earnings := make(map[region.Region][]float64, 3)
	totals := make(map[region.Region]RegionTotals, 3)
	for _, r := range region.All() {
		totals[r] = RegionTotals{Region: r}
	}

	perWin := make(map[region.Region]float64, 3)
	for _, rec := range e.records {
		t := totals[rec.Region]
		t.PlayerCount++
		t.TotalEarnings += rec.Earnings
		t.FirstPlaces += rec.FirstPlace
		t.TotalWins += rec.TotalWins
		totals[rec.Region] = t

		earnings[rec.Region] = append(earnings[rec.Region], rec.Earnings)
		perWin[rec.Region] += rec.EarningsPerWin
	}

	for r, t := range totals {
		if t.PlayerCount == 0 {
			continue
		}
		t.AverageEarnings = t.TotalEarnings / float64(t.PlayerCount)
		t.MedianEarnings = median(earnings[r])
		t.MeanEarningsPerWin = perWin[r] / float64(t.PlayerCount)
		totals[r] = t
	}

	return totals
}

// Correlation is the Pearson coefficient between total wins and earnings
// over records with at least one placement.
func (e *Engine) Correlation() Correlation {
	return e.correlate(e.winners(""), totalWins)
}

// FirstPlaceCorrelation is the Pearson coefficient between first-place finishes and
// earnings over the same records as Correlation.
func (e *Engine) FirstPlaceCorrelation() Correlation {
	return e.correlate(e.winners(""), firstPlaces)
}

// CorrelationByRegion computes Correlation separately for each region.
// A region with fewer than MinRegionalSample qualifying records is undefined.
func (e *Engine) CorrelationByRegion() map[region.Region]Correlation {
	out := make(map[region.Region]Correlation, 3)
	for _, r := range region.All() {
		recs := e.winners(r)
		if len(recs) < MinRegionalSample {
			out[r] = Correlation{N: len(recs)}
			continue
		}
		out[r] = e.correlate(recs, totalWins)
	}
	return out
}

// EfficiencyByRegion returns the earnings-per-win values of every record with at least
// one placement, grouped by region in dataset order. Every region has a non-nil slice.
func (e *Engine) EfficiencyByRegion() map[region.Region][]float64 {
	out := make(map[region.Region][]float64, 3)
	for _, r := range region.All() {
		out[r] = []float64{}
	}
	for _, rec := range e.records {
		if rec.TotalWins <= 0 {
			continue
		}
		out[rec.Region] = append(out[rec.Region], rec.EarningsPerWin)
	}
	return out
}

// EfficiencySummary reduces EfficiencyByRegion to count, mean and median
func (e *Engine) EfficiencySummary() map[region.Region]EfficiencyStats {
	out := make(map[region.Region]EfficiencyStats, 3)
	for r, values := range e.EfficiencyByRegion() {
		stats := EfficiencyStats{Count: len(values)}
		if len(values) > 0 {
			stats.Mean = mean(values)
			stats.Median = median(values)
		}
		out[r] = stats
	}
	return out
}

func totalWins(rec player.Record) float64   { return float64(rec.TotalWins) }
func firstPlaces(rec player.Record) float64 { return float64(rec.FirstPlace) }

// winners returns records with total_wins > 0, restricted to r unless r is empty
func (e *Engine) winners(r region.Region) []player.Record {
	out := make([]player.Record, 0, len(e.records))
	for _, rec := range e.records {
		if rec.TotalWins <= 0 {
			continue
		}
		if r != "" && rec.Region != r {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (e *Engine) correlate(recs []player.Record, x func(player.Record) float64) Correlation {
	xs := make([]float64, len(recs))
	ys := make([]float64, len(recs))
	for i, rec := range recs {
		xs[i] = x(rec)
		ys[i] = rec.Earnings
	}
	return Pearson(xs, ys)
}

// Pearson computes the linear correlation coefficient of xs and ys.
// The result is undefined when the slices differ in length, hold fewer than two values,
// or either variable is constant.
func Pearson(xs, ys []float64) Correlation {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return Correlation{N: n}
	}

	mx, my := mean(xs), mean(ys)

	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return Correlation{N: n}
	}

	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Correlation{N: n}
	}

	// rounding can push |r| slightly past 1
	r = math.Max(-1, math.Min(1, r))

	return Correlation{R: r, N: n, Defined: true}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
