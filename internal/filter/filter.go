// Package filter restricts the player records handed to the analysis engine.
//
// A filter combines optional criteria; a record must satisfy every active criterion:
//   - Regions (exact match against NA, EU, Other)
//   - Countries (case-insensitive exact match)
//   - Minimum total wins
//   - Minimum earnings
//
// An empty filter matches every record.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Regions = []region.Region{region.NA, region.EU}
//	f.MinWins = 1
//
//	records = f.Apply(records)
package filter

import (
	"fmt"
	"strings"

	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"
)

// Filter represents record filtering criteria
type Filter struct {
	Regions []region.Region `json:"regions,omitempty"`

	// Country filtering (case-insensitive)
	Countries []string `json:"countries,omitempty"`

	// Records with fewer total wins are dropped
	MinWins int `json:"min_wins,omitempty"`

	MinEarnings float64 `json:"min_earnings,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Regions:   []region.Region{},
		Countries: []string{},
	}
}

// ParseRegions converts region labels such as "na" or "EU" into a filter
func ParseRegions(labels []string) (*Filter, error) {
	f := NewFilter()
	for _, label := range labels {
		for _, part := range strings.Split(label, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			r, err := region.Parse(part)
			if err != nil {
				return nil, err
			}
			f.Regions = append(f.Regions, r)
		}
	}
	return f, nil
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all records.
func (f *Filter) IsEmpty() bool {
	return len(f.Regions) == 0 &&
		len(f.Countries) == 0 &&
		f.MinWins <= 0 &&
		f.MinEarnings <= 0
}

// Matches checks if a record matches all active filter criteria.
// An empty filter matches all records.
func (f *Filter) Matches(rec *player.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Regions) > 0 {
		matched := false
		for _, r := range f.Regions {
			if rec.Region == r {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Countries) > 0 {
		matched := false
		for _, country := range f.Countries {
			if strings.EqualFold(strings.TrimSpace(rec.Country), strings.TrimSpace(country)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if rec.TotalWins < f.MinWins {
		return false
	}

	if rec.Earnings < f.MinEarnings {
		return false
	}

	return true
}

// Apply returns the records matching the filter, in their original order.
// If the filter is empty, returns the original slice unchanged.
func (f *Filter) Apply(records []*player.Record) []*player.Record {
	if f.IsEmpty() {
		return records
	}

	filtered := make([]*player.Record, 0, len(records))
	for _, rec := range records {
		if rec != nil && f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Returns "No active filters" if the filter is empty.
// Format: "Regions: NA, EU | Min wins: 1"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Regions) > 0 {
		labels := make([]string, len(f.Regions))
		for i, r := range f.Regions {
			labels[i] = string(r)
		}
		parts = append(parts, fmt.Sprintf("Regions: %s", strings.Join(labels, ", ")))
	}

	if len(f.Countries) > 0 {
		parts = append(parts, fmt.Sprintf("Countries: %s", strings.Join(f.Countries, ", ")))
	}

	if f.MinWins > 0 {
		parts = append(parts, fmt.Sprintf("Min wins: %d", f.MinWins))
	}

	if f.MinEarnings > 0 {
		parts = append(parts, fmt.Sprintf("Min earnings: $%.2f", f.MinEarnings))
	}

	return strings.Join(parts, " | ")
}
