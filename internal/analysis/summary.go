package analysis

import (
	"github.com/lpearl21/rl-earnings/internal/region"
)

// Summary bundles every metric the engine computes.
// Its JSON encoding is the contract consumed by chart tooling.
type Summary struct {
	Records               int                               `json:"records"`
	RegionalTotals        map[region.Region]RegionTotals    `json:"regional_totals"`
	Correlation           Correlation                       `json:"correlation"`
	FirstPlaceCorrelation Correlation                       `json:"first_place_correlation"`
	CorrelationByRegion   map[region.Region]Correlation     `json:"correlation_by_region"`
	EfficiencyByRegion    map[region.Region][]float64       `json:"efficiency_by_region"`
	EfficiencySummary     map[region.Region]EfficiencyStats `json:"efficiency_summary"`
}

// Summary runs every computation once
func (e *Engine) Summary() *Summary {
	return &Summary{
		Records:               e.Len(),
		RegionalTotals:        e.RegionalTotals(),
		Correlation:           e.Correlation(),
		FirstPlaceCorrelation: e.FirstPlaceCorrelation(),
		CorrelationByRegion:   e.CorrelationByRegion(),
		EfficiencyByRegion:    e.EfficiencyByRegion(),
		EfficiencySummary:     e.EfficiencySummary(),
	}
}
