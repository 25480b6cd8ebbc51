package player

import (
	"math"
	"strings"

	"github.com/lpearl21/rl-earnings/internal/region"
)

// UnknownCountry is stored when the source row carries no country flag
const UnknownCountry = "Unknown"

// NoWinsEarningsPerWin is the earnings_per_win value of a player with zero placements
const NoWinsEarningsPerWin = 0.0

// Entry is a raw field tuple extracted from one source row
type Entry struct {
	Player      string  `json:"player"`
	Country     string  `json:"country"`
	FirstPlace  int     `json:"first_place"`
	SecondPlace int     `json:"second_place"`
	ThirdPlace  int     `json:"third_place"`
	Earnings    float64 `json:"earnings"`
}

// Record is one normalized player row of the dataset
type Record struct {
	Player         string        `json:"player"`
	Country        string        `json:"country"`
	FirstPlace     int           `json:"first_place"`
	SecondPlace    int           `json:"second_place"`
	ThirdPlace     int           `json:"third_place"`
	Earnings       float64       `json:"earnings"`
	Region         region.Region `json:"region"`
	TotalWins      int           `json:"total_wins"`
	EarningsPerWin float64       `json:"earnings_per_win"`
}

// NewRecord creates a Record from e with region r and the derived fields populated.
// Negative counts and earnings are clamped to zero.
func NewRecord(e Entry, r region.Region) *Record {
	if r == "" {
		r = region.Other
	}

	rec := &Record{
		Player:      strings.TrimSpace(e.Player),
		Country:     strings.TrimSpace(e.Country),
		FirstPlace:  nonNegative(e.FirstPlace),
		SecondPlace: nonNegative(e.SecondPlace),
		ThirdPlace:  nonNegative(e.ThirdPlace),
		Earnings:    e.Earnings,
		Region:      r,
	}
	if rec.Earnings < 0 || math.IsNaN(rec.Earnings) || math.IsInf(rec.Earnings, 0) {
		rec.Earnings = 0
	}

	rec.TotalWins = TotalWins(rec.FirstPlace, rec.SecondPlace, rec.ThirdPlace)
	rec.EarningsPerWin = EarningsPerWin(rec.Earnings, rec.TotalWins)
	return rec
}

// TotalWins sums the three placement counts
func TotalWins(first, second, third int) int {
	return first + second + third
}

// EarningsPerWin divides earnings by total wins, or returns NoWinsEarningsPerWin
// when the player has no placements.
func EarningsPerWin(earnings float64, totalWins int) float64 {
	if totalWins <= 0 {
		return NoWinsEarningsPerWin
	}
	return earnings / float64(totalWins)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
