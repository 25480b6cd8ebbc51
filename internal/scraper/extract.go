package scraper

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lpearl21/rl-earnings/internal/player"
)

// ErrSourceFormat is matched by every SourceFormatError
var ErrSourceFormat = errors.New("source format error")

// SourceFormatError reports that the page does not contain the expected table structure
type SourceFormatError struct {
	Selector string
	Reason   string
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("source format: %s (selector %q)", e.Reason, e.Selector)
}

func (e *SourceFormatError) Unwrap() error {
	return ErrSourceFormat
}

// Field names used in ExtractStats.FieldsDefaulted
const (
	FieldFirstPlace  = "first_place"
	FieldSecondPlace = "second_place"
	FieldThirdPlace  = "third_place"
	FieldEarnings    = "earnings"
)

// Extractor turns page markup into raw player entries
type Extractor interface {
	Extract(r io.Reader) (*Extraction, error)
}

// Extraction is the result of one extraction pass
type Extraction struct {
	Entries []player.Entry
	Stats   ExtractStats
}

// ExtractStats counts how many rows were read, skipped or needed defaults
type ExtractStats struct {
	RowsSeen        int            `json:"rows_seen"`
	RowsSkipped     int            `json:"rows_skipped"`
	RowsDefaulted   int            `json:"rows_defaulted"`
	FieldsDefaulted map[string]int `json:"fields_defaulted"`
}

// Layout describes where each field lives in a table row
type Layout struct {
	TableSelector string
	PlayerCell    int
	FirstCell     int
	SecondCell    int
	ThirdCell     int
	// EarningsCell below zero counts from the end of the row (-1 is the last cell)
	EarningsCell int
	// MinCells is the smallest number of td cells a data row can have
	MinCells int
}

// DefaultLayout matches the Liquipedia player-earnings table
func DefaultLayout() Layout {
	return Layout{
		TableSelector: "table.wikitable",
		PlayerCell:    1,
		FirstCell:     3,
		SecondCell:    4,
		ThirdCell:     5,
		EarningsCell:  -1,
		MinCells:      7,
	}
}

// TableExtractor extracts entries from an HTML table using goquery
type TableExtractor struct {
	layout Layout
}

// NewTableExtractor creates a TableExtractor; an empty selector keeps the default one
func NewTableExtractor(layout Layout) *TableExtractor {
	if layout.TableSelector == "" {
		layout.TableSelector = DefaultLayout().TableSelector
	}
	return &TableExtractor{layout: layout}
}

// Extract parses the first table matching the layout selector
func (x *TableExtractor) Extract(r io.Reader) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find(x.layout.TableSelector).First()
	if table.Length() == 0 {
		return nil, &SourceFormatError{
			Selector: x.layout.TableSelector,
			Reason:   "earnings table not found",
		}
	}

	result := &Extraction{
		Entries: make([]player.Entry, 0),
		Stats: ExtractStats{
			FieldsDefaulted: make(map[string]int),
		},
	}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			// header row
			return
		}
		result.Stats.RowsSeen++

		if cells.Length() < x.layout.MinCells {
			result.Stats.RowsSkipped++
			return
		}

		entry, defaulted, ok := x.parseRow(cells)
		if !ok {
			result.Stats.RowsSkipped++
			return
		}

		if len(defaulted) > 0 {
			result.Stats.RowsDefaulted++
			for _, field := range defaulted {
				result.Stats.FieldsDefaulted[field]++
			}
		}

		result.Entries = append(result.Entries, entry)
	})

	if result.Stats.RowsSeen == 0 {
		return nil, &SourceFormatError{
			Selector: x.layout.TableSelector,
			Reason:   "earnings table has no data rows",
		}
	}

	return result, nil
}

// parseRow extracts one entry, returning the names of fields that fell back to zero.
// ok is false when the row has no player name.
func (x *TableExtractor) parseRow(cells *goquery.Selection) (entry player.Entry, defaulted []string, ok bool) {
	name, country := parsePlayerCell(cellAt(cells, x.layout.PlayerCell))
	if name == "" {
		return entry, nil, false
	}

	entry.Player = name
	entry.Country = country

	counts := []struct {
		field string
		index int
		dst   *int
	}{
		{FieldFirstPlace, x.layout.FirstCell, &entry.FirstPlace},
		{FieldSecondPlace, x.layout.SecondCell, &entry.SecondPlace},
		{FieldThirdPlace, x.layout.ThirdCell, &entry.ThirdPlace},
	}
	for _, c := range counts {
		n, parsed := parseCount(cellText(cellAt(cells, c.index)))
		if !parsed {
			defaulted = append(defaulted, c.field)
		}
		*c.dst = n
	}

	earnings, parsed := parseEarnings(cellText(cellAt(cells, x.layout.EarningsCell)))
	if !parsed {
		defaulted = append(defaulted, FieldEarnings)
	}
	entry.Earnings = earnings

	return entry, defaulted, true
}

// cellAt returns the cell at index, counting from the end for negative indexes.
// Out-of-range indexes yield an empty selection.
func cellAt(cells *goquery.Selection, index int) *goquery.Selection {
	if index < 0 {
		index = cells.Length() + index
	}
	if index < 0 || index >= cells.Length() {
		return cells.Slice(0, 0)
	}
	return cells.Eq(index)
}

// parsePlayerCell returns the player name and country from the player cell.
// The country comes from the flag link, the name from the last link without an image.
func parsePlayerCell(cell *goquery.Selection) (name, country string) {
	cell.Find("a").Each(func(_ int, a *goquery.Selection) {
		img := a.Find("img")
		if img.Length() > 0 {
			if country != "" {
				return
			}
			if title, exists := a.Attr("title"); exists && cleanText(title) != "" {
				country = cleanText(title)
			} else if alt, exists := img.First().Attr("alt"); exists {
				country = cleanText(alt)
			}
			return
		}
		if text := cleanText(a.Text()); text != "" {
			name = text
		}
	})

	if country == "" {
		if alt, exists := cell.Find("img").First().Attr("alt"); exists {
			country = cleanText(alt)
		}
	}

	if name == "" {
		name = cellText(cell)
		// cell text includes the flag caption when there is no separate link
		if country != "" && strings.Contains(name, country) {
			name = strings.TrimSpace(strings.Replace(name, country, "", 1))
		}
	}

	if country == "" {
		country = player.UnknownCountry
	}

	return name, country
}

func cellText(cell *goquery.Selection) string {
	return cleanText(cell.Text())
}

// cleanText collapses non-breaking spaces and trims the result
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

var numberNoise = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"USD", "",
	",", "",
	"'", "",
	" ", "",
	"\u00a0", "",
	"\u2009", "",
	"\u202f", "",
)

func stripNumber(s string) string {
	return numberNoise.Replace(strings.TrimSpace(s))
}

// parseCount parses a placement count, returning 0 and false when it cannot
func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(stripNumber(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseEarnings parses a currency amount such as "$1,234,567.89"
func parseEarnings(s string) (float64, bool) {
	v, err := strconv.ParseFloat(stripNumber(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
