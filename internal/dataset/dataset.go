// Package dataset turns extracted player entries into the normalized earnings dataset.
//
// The Builder deduplicates entries by player name (the first occurrence wins, later ones are
// dropped and counted), classifies each player's region, and derives total wins and
// earnings per win. The resulting Dataset can be persisted through a Store and handed
// straight to the analysis engine.
package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"
)

// Store persists and reloads the dataset
type Store interface {
	Save(records []*player.Record) error
	Load() ([]*player.Record, error)
	Path() string
}

// Dataset is the ordered set of player records produced by one build
type Dataset struct {
	Records []*player.Record
	Stats   BuildStats
}

// BuildStats describes what the builder did with its input
type BuildStats struct {
	Entries           int `json:"entries"`
	Records           int `json:"records"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	EmptyNamesDropped int `json:"empty_names_dropped"`
}

// Builder constructs datasets using a region classifier
type Builder struct {
	classifier *region.Classifier
}

// NewBuilder creates a Builder. A nil classifier uses the default country lists.
func NewBuilder(classifier *region.Classifier) *Builder {
	if classifier == nil {
		classifier = region.Default()
	}
	return &Builder{classifier: classifier}
}

// Build deduplicates entries and derives every record field.
// Records keep the order in which players first appear.
func (b *Builder) Build(entries []player.Entry) *Dataset {
	ds := &Dataset{
		Records: make([]*player.Record, 0, len(entries)),
		Stats:   BuildStats{Entries: len(entries)},
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Player)
		if name == "" {
			ds.Stats.EmptyNamesDropped++
			continue
		}
		if seen[name] {
			ds.Stats.DuplicatesDropped++
			continue
		}
		seen[name] = true

		ds.Records = append(ds.Records, player.NewRecord(e, b.classifier.Classify(e.Country)))
	}

	ds.Stats.Records = len(ds.Records)
	return ds
}

// Persist writes the dataset through store, replacing whatever it held
func Persist(store Store, ds *Dataset) error {
	if err := store.Save(ds.Records); err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}
	return nil
}

// BuildAndPersist builds a dataset from entries and saves it, returning the in-memory copy
func (b *Builder) BuildAndPersist(entries []player.Entry, store Store) (*Dataset, error) {
	ds := b.Build(entries)
	if err := Persist(store, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// CountByRegion returns the number of players in each region, including empty regions
func (d *Dataset) CountByRegion() map[region.Region]int {
	counts := make(map[region.Region]int, len(region.All()))
	for _, r := range region.All() {
		counts[r] = 0
	}
	for _, rec := range d.Records {
		counts[rec.Region]++
	}
	return counts
}

// Top returns up to n records ordered by earnings, highest first.
// Ties keep dataset order.
func (d *Dataset) Top(n int) []*player.Record {
	if n <= 0 {
		return nil
	}

	sorted := make([]*player.Record, len(d.Records))
	copy(sorted, d.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Earnings > sorted[j].Earnings
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
