package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/lpearl21/rl-earnings/internal/dataset"
	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, entries ...player.Entry) *Engine {
	t.Helper()
	return New(dataset.NewBuilder(nil).Build(entries).Records)
}

func scenario(t *testing.T) *Engine {
	return build(t,
		player.Entry{Player: "Squishy", Country: "USA", FirstPlace: 10, SecondPlace: 5, ThirdPlace: 2, Earnings: 50000},
		player.Entry{Player: "Scrub", Country: "Germany", FirstPlace: 3, SecondPlace: 1, Earnings: 8000},
		player.Entry{Player: "Retals", Country: "Unknownland", Earnings: 1000},
	)
}

func TestRegionalTotals_Scenario(t *testing.T) {
	totals := scenario(t).RegionalTotals()
	require.Len(t, totals, 3)

	na := totals[region.NA]
	require.Equal(t, 1, na.PlayerCount)
	require.Equal(t, 50000.0, na.TotalEarnings)
	require.Equal(t, 50000.0, na.AverageEarnings)
	require.Equal(t, 17, na.TotalWins)
	require.Equal(t, 10, na.FirstPlaces)
	require.InDelta(t, 2941.18, na.MeanEarningsPerWin, 0.01)

	eu := totals[region.EU]
	require.Equal(t, 1, eu.PlayerCount)
	require.Equal(t, 8000.0, eu.TotalEarnings)
	require.Equal(t, 2000.0, eu.MeanEarningsPerWin)

	other := totals[region.Other]
	require.Equal(t, 1, other.PlayerCount)
	require.Equal(t, 1000.0, other.TotalEarnings)
	require.Equal(t, 0, other.TotalWins)
	require.Equal(t, player.NoWinsEarningsPerWin, other.MeanEarningsPerWin)
}

func TestRegionalTotals_EmptyRegionsReported(t *testing.T) {
	totals := build(t,
		player.Entry{Player: "a", Country: "France", FirstPlace: 1, Earnings: 100},
		player.Entry{Player: "b", Country: "Spain", FirstPlace: 2, Earnings: 300},
		player.Entry{Player: "c", Country: "Sweden", FirstPlace: 3, Earnings: 1000},
		player.Entry{Player: "d", Country: "Italy", FirstPlace: 4, Earnings: 600},
	).RegionalTotals()

	for _, r := range []region.Region{region.NA, region.Other} {
		got, ok := totals[r]
		require.True(t, ok, "region %s missing", r)
		require.Equal(t, RegionTotals{Region: r}, got)
	}

	eu := totals[region.EU]
	require.Equal(t, 4, eu.PlayerCount)
	require.Equal(t, 2000.0, eu.TotalEarnings)
	require.Equal(t, 500.0, eu.AverageEarnings)
	require.Equal(t, 450.0, eu.MedianEarnings)
	require.Equal(t, 10, eu.FirstPlaces)
}

func TestRegionalTotals_SumMatchesDataset(t *testing.T) {
	e := build(t,
		player.Entry{Player: "a", Country: "Canada", FirstPlace: 1, Earnings: 10.5},
		player.Entry{Player: "b", Country: "Norway", Earnings: 20.25},
		player.Entry{Player: "c", Country: "Brazil", SecondPlace: 4, Earnings: 30},
		player.Entry{Player: "d", Country: "Mexico", ThirdPlace: 1, Earnings: 40},
	)

	var sum float64
	var count int
	for _, rt := range e.RegionalTotals() {
		sum += rt.TotalEarnings
		count += rt.PlayerCount
	}
	require.InDelta(t, 100.75, sum, 1e-9)
	require.Equal(t, e.Len(), count)
}

func TestCorrelation_Scenario(t *testing.T) {
	c := scenario(t).Correlation()

	// Retals has no placements and is left out
	require.True(t, c.Defined)
	require.Equal(t, 2, c.N)
	require.InDelta(t, 1.0, c.R, 1e-9)
	require.Equal(t, StrengthStrong, c.Strength())
}

func TestCorrelation_Undefined(t *testing.T) {
	tests := []struct {
		name    string
		entries []player.Entry
		wantN   int
	}{
		{
			name:  "no records",
			wantN: 0,
		},
		{
			name: "single qualifying record",
			entries: []player.Entry{
				{Player: "a", Country: "USA", FirstPlace: 1, Earnings: 10},
				{Player: "b", Country: "USA", Earnings: 20},
			},
			wantN: 1,
		},
		{
			name: "constant wins",
			entries: []player.Entry{
				{Player: "a", Country: "USA", FirstPlace: 2, Earnings: 10},
				{Player: "b", Country: "USA", SecondPlace: 2, Earnings: 20},
				{Player: "c", Country: "USA", ThirdPlace: 2, Earnings: 30},
			},
			wantN: 3,
		},
		{
			name: "constant earnings",
			entries: []player.Entry{
				{Player: "a", Country: "USA", FirstPlace: 1, Earnings: 10},
				{Player: "b", Country: "USA", FirstPlace: 5, Earnings: 10},
			},
			wantN: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := build(t, tt.entries...).Correlation()
			require.False(t, c.Defined)
			require.Equal(t, tt.wantN, c.N)
			require.False(t, math.IsNaN(c.R))
			require.Equal(t, StrengthUndefined, c.Strength())
		})
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want float64
	}{
		{name: "perfect positive", xs: []float64{1, 2, 3}, ys: []float64{10, 20, 30}, want: 1},
		{name: "perfect negative", xs: []float64{1, 2, 3}, ys: []float64{30, 20, 10}, want: -1},
		{name: "partial", xs: []float64{1, 2, 3, 4, 5}, ys: []float64{2, 4, 5, 4, 5}, want: 6 / math.Sqrt(60)},
		{name: "large values", xs: []float64{1e6, 2e6, 3e6}, ys: []float64{1e9, 3e9, 2e9}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Pearson(tt.xs, tt.ys)
			require.True(t, c.Defined)
			require.Equal(t, len(tt.xs), c.N)
			require.InDelta(t, tt.want, c.R, 1e-9)
			require.GreaterOrEqual(t, c.R, -1.0)
			require.LessOrEqual(t, c.R, 1.0)
		})
	}

	require.False(t, Pearson([]float64{1, 2}, []float64{1}).Defined)
}

func TestFirstPlaceCorrelation(t *testing.T) {
	e := build(t,
		player.Entry{Player: "a", Country: "USA", FirstPlace: 0, SecondPlace: 9, Earnings: 0},
		player.Entry{Player: "b", Country: "USA", FirstPlace: 5, Earnings: 500},
		player.Entry{Player: "c", Country: "USA", FirstPlace: 10, Earnings: 1000},
		player.Entry{Player: "d", Country: "USA", Earnings: 99999},
	)

	c := e.FirstPlaceCorrelation()
	require.True(t, c.Defined)
	require.Equal(t, 3, c.N)
	require.InDelta(t, 1.0, c.R, 1e-9)
}

func TestCorrelationByRegion(t *testing.T) {
	e := build(t,
		player.Entry{Player: "na1", Country: "USA", FirstPlace: 1, Earnings: 100},
		player.Entry{Player: "na2", Country: "Canada", FirstPlace: 2, Earnings: 200},
		player.Entry{Player: "na3", Country: "Mexico", FirstPlace: 3, Earnings: 300},
		player.Entry{Player: "eu1", Country: "France", FirstPlace: 1, Earnings: 100},
		player.Entry{Player: "eu2", Country: "Germany", FirstPlace: 2, Earnings: 50},
		player.Entry{Player: "eu3", Country: "Spain", Earnings: 1000},
	)

	byRegion := e.CorrelationByRegion()
	require.Len(t, byRegion, 3)

	na := byRegion[region.NA]
	require.True(t, na.Defined)
	require.Equal(t, 3, na.N)
	require.InDelta(t, 1.0, na.R, 1e-9)

	eu := byRegion[region.EU]
	require.False(t, eu.Defined, "two qualifying EU records are not enough")
	require.Equal(t, 2, eu.N)

	require.Equal(t, Correlation{}, byRegion[region.Other])
}

func TestEfficiencyByRegion_Scenario(t *testing.T) {
	eff := scenario(t).EfficiencyByRegion()

	require.Len(t, eff, 3)
	require.Len(t, eff[region.NA], 1)
	require.InDelta(t, 2941.18, eff[region.NA][0], 0.01)
	require.Equal(t, []float64{2000}, eff[region.EU])
	require.NotNil(t, eff[region.Other])
	require.Empty(t, eff[region.Other])
}

func TestEfficiencyByRegion_ExcludesZeroWins(t *testing.T) {
	e := build(t,
		player.Entry{Player: "a", Country: "France", FirstPlace: 2, Earnings: 1000},
		player.Entry{Player: "b", Country: "France", Earnings: 5000},
		player.Entry{Player: "c", Country: "France", ThirdPlace: 4, Earnings: 400},
	)

	require.Equal(t, []float64{500, 100}, e.EfficiencyByRegion()[region.EU])

	summary := e.EfficiencySummary()
	require.Equal(t, EfficiencyStats{Count: 2, Mean: 300, Median: 300}, summary[region.EU])
	require.Equal(t, EfficiencyStats{}, summary[region.NA])
}

func TestStrengthOf(t *testing.T) {
	tests := []struct {
		r    float64
		want Strength
	}{
		{0.95, StrengthStrong},
		{-0.71, StrengthStrong},
		{0.7, StrengthModerate},
		{0.5, StrengthModerate},
		{-0.41, StrengthModerate},
		{0.4, StrengthWeak},
		{0, StrengthWeak},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, StrengthOf(tt.r), "StrengthOf(%v)", tt.r)
	}
}

func TestNew_CopiesRecords(t *testing.T) {
	records := dataset.NewBuilder(nil).Build([]player.Entry{
		{Player: "a", Country: "USA", FirstPlace: 1, Earnings: 100},
	}).Records
	records = append(records, nil)

	e := New(records)
	records[0].Earnings = 1e9

	require.Equal(t, 1, e.Len())
	require.Equal(t, 100.0, e.RegionalTotals()[region.NA].TotalEarnings)
}

func TestSummary_JSONShape(t *testing.T) {
	s := scenario(t).Summary()
	require.Equal(t, 3, s.Records)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"records",
		"regional_totals",
		"correlation",
		"first_place_correlation",
		"correlation_by_region",
		"efficiency_by_region",
		"efficiency_summary",
	} {
		require.Contains(t, decoded, key)
	}

	var eff map[string][]float64
	require.NoError(t, json.Unmarshal(decoded["efficiency_by_region"], &eff))
	require.Equal(t, []float64{}, eff["Other"])
}
