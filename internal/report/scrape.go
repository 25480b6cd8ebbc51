package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lpearl21/rl-earnings/internal/dataset"
	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"
	"github.com/lpearl21/rl-earnings/internal/scraper"
)

// TopEarners is how many players the scrape summary lists
const TopEarners = 5

// ScrapeResult describes one completed scrape
type ScrapeResult struct {
	ScrapedAt  time.Time             `json:"scraped_at"`
	Source     string                `json:"source"`
	Path       string                `json:"path"`
	Players    int                   `json:"players"`
	ByRegion   map[region.Region]int `json:"by_region"`
	TopEarners []*player.Record      `json:"top_earners"`
	Extract    scraper.ExtractStats  `json:"extract"`
	Build      dataset.BuildStats    `json:"build"`
	Cached     bool                  `json:"cached"`

	// Diff is nil when there was no previous dataset to compare with.
	Diff *dataset.DiffResult `json:"diff,omitempty"`
}

// NewScrapeResult summarizes ds as saved to path
func NewScrapeResult(source, path string, ext *scraper.Extraction, ds *dataset.Dataset) *ScrapeResult {
	return &ScrapeResult{
		ScrapedAt:  time.Now().UTC(),
		Source:     source,
		Path:       path,
		Players:    len(ds.Records),
		ByRegion:   ds.CountByRegion(),
		TopEarners: ds.Top(TopEarners),
		Extract:    ext.Stats,
		Build:      ds.Stats,
	}
}

// WriteScrape writes the scrape summary in the specified format
func WriteScrape(w io.Writer, result *ScrapeResult, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeScrapeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeScrapeText(w io.Writer, result *ScrapeResult) error {
	fmt.Fprintf(w, "Scraped %d players from %s\n", result.Players, result.Source)
	if result.Cached {
		fmt.Fprintln(w, "Page served from cache (use --refresh to fetch again)")
	}
	fmt.Fprintf(w, "Saved to %s\n", result.Path)

	if result.Extract.RowsSkipped > 0 || result.Extract.RowsDefaulted > 0 {
		fmt.Fprintf(w, "Rows skipped: %d, rows with defaulted fields: %d\n",
			result.Extract.RowsSkipped, result.Extract.RowsDefaulted)
	}
	if result.Build.DuplicatesDropped > 0 {
		fmt.Fprintf(w, "Duplicate players dropped: %d\n", result.Build.DuplicatesDropped)
	}

	writeDiffText(w, result.Diff)

	if result.Players == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nPLAYERS BY REGION")
	t := newTable(w)
	t.AppendHeader(table.Row{"Region", "Players"})
	for _, r := range regionOrder(result.ByRegion) {
		t.AppendRow(table.Row{r, result.ByRegion[r]})
	}
	t.Render()

	fmt.Fprintf(w, "\nTOP %d EARNERS\n", len(result.TopEarners))
	t = newTable(w)
	t.AppendHeader(table.Row{"#", "Player", "Country", "Region", "Earnings"})
	for i, rec := range result.TopEarners {
		t.AppendRow(table.Row{i + 1, rec.Player, rec.Country, rec.Region, money(rec.Earnings)})
	}
	t.Render()

	return nil
}

// maxListed caps how many names a diff line prints
const maxListed = 10

func writeDiffText(w io.Writer, diff *dataset.DiffResult) {
	if diff == nil {
		return
	}
	if diff.Empty() {
		fmt.Fprintln(w, "No changes since the previous scrape")
		return
	}

	fmt.Fprintf(w, "Since the previous scrape: %d new, %d removed, %d changed values\n",
		len(diff.NewPlayers), len(diff.RemovedPlayers), len(diff.Changes))
	if len(diff.NewPlayers) > 0 {
		fmt.Fprintf(w, "  New: %s\n", listNames(diff.NewPlayers))
	}
	if len(diff.RemovedPlayers) > 0 {
		fmt.Fprintf(w, "  Removed: %s\n", listNames(diff.RemovedPlayers))
	}
	for i, c := range diff.Changes {
		if i == maxListed {
			fmt.Fprintf(w, "  ... and %d more changes\n", len(diff.Changes)-maxListed)
			break
		}
		fmt.Fprintf(w, "  %s %s: %s -> %s\n", c.Player, c.Field, c.OldValue, c.NewValue)
	}
}

func listNames(names []string) string {
	if len(names) <= maxListed {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:maxListed], ", "), len(names)-maxListed)
}

// regionOrder lists the keys of m in reporting order, followed by any unexpected
// labels in alphabetical order.
func regionOrder[V any](m map[region.Region]V) []region.Region {
	order := make([]region.Region, 0, len(m))
	known := make(map[region.Region]bool, 3)
	for _, r := range region.All() {
		known[r] = true
		if _, ok := m[r]; ok {
			order = append(order, r)
		}
	}

	var extra []region.Region
	for r := range m {
		if !known[r] {
			extra = append(extra, r)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(order, extra...)
}
