package dataset

import (
	"sort"
	"strconv"

	"github.com/lpearl21/rl-earnings/internal/player"
)

// Change types reported in DiffResult.Changes
const (
	ChangeCountry     = "country"
	ChangeFirstPlace  = "first_place"
	ChangeSecondPlace = "second_place"
	ChangeThirdPlace  = "third_place"
	ChangeEarnings    = "earnings"
)

// Change is one field of a player that differs between two datasets
type Change struct {
	Player   string `json:"player"`
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DiffResult compares a previously persisted dataset with a fresh one
type DiffResult struct {
	NewPlayers     []string  `json:"new_players"`
	RemovedPlayers []string  `json:"removed_players"`
	Changes        []*Change `json:"changes"`
}

// Empty reports whether the two datasets hold the same players and values
func (d *DiffResult) Empty() bool {
	return len(d.NewPlayers) == 0 && len(d.RemovedPlayers) == 0 && len(d.Changes) == 0
}

// Diff compares current against previous by player name.
// Player lists are sorted; changes follow the order of current.
func Diff(previous, current []*player.Record) *DiffResult {
	result := &DiffResult{
		NewPlayers:     make([]string, 0),
		RemovedPlayers: make([]string, 0),
		Changes:        make([]*Change, 0),
	}

	prev := make(map[string]*player.Record, len(previous))
	for _, rec := range previous {
		prev[rec.Player] = rec
	}

	seen := make(map[string]bool, len(current))
	for _, rec := range current {
		seen[rec.Player] = true

		old, exists := prev[rec.Player]
		if !exists {
			result.NewPlayers = append(result.NewPlayers, rec.Player)
			continue
		}
		result.Changes = append(result.Changes, DetectChanges(old, rec)...)
	}

	for name := range prev {
		if !seen[name] {
			result.RemovedPlayers = append(result.RemovedPlayers, name)
		}
	}

	sort.Strings(result.NewPlayers)
	sort.Strings(result.RemovedPlayers)

	return result
}

// DetectChanges compares two records of the same player field by field.
// Derived fields are not reported separately.
func DetectChanges(previous, current *player.Record) []*Change {
	var changes []*Change

	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, &Change{
				Player:   current.Player,
				Field:    field,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}

	add(ChangeCountry, previous.Country, current.Country)
	add(ChangeFirstPlace, strconv.Itoa(previous.FirstPlace), strconv.Itoa(current.FirstPlace))
	add(ChangeSecondPlace, strconv.Itoa(previous.SecondPlace), strconv.Itoa(current.SecondPlace))
	add(ChangeThirdPlace, strconv.Itoa(previous.ThirdPlace), strconv.Itoa(current.ThirdPlace))
	add(ChangeEarnings, formatAmount(previous.Earnings), formatAmount(current.Earnings))

	return changes
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
