// Package report renders analysis results and scrape summaries.
//
// A Sink receives an analysis.Summary. TextSink prints go-pretty tables for humans;
// JSONSink writes the summary as indented JSON, which is the stable input for chart
// tooling. Charts themselves are drawn outside this program.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/lpearl21/rl-earnings/internal/analysis"
)

// Format specifies the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// Sink consumes the metrics engine's results
type Sink interface {
	Render(summary *analysis.Summary) error
}

// New returns the sink for format writing to w
func New(format Format, w io.Writer) (Sink, error) {
	switch format {
	case FormatText:
		return &TextSink{w: w}, nil
	case FormatJSON:
		return &JSONSink{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// JSONSink writes the summary as indented JSON
type JSONSink struct {
	w io.Writer
}

// NewJSONSink creates a JSONSink writing to w
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

// Render encodes summary
func (s *JSONSink) Render(summary *analysis.Summary) error {
	return writeJSON(s.w, summary)
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// TextSink prints the summary as tables
type TextSink struct {
	w io.Writer
}

// NewTextSink creates a TextSink writing to w
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Render prints regional totals, correlations and efficiency in that order
func (s *TextSink) Render(summary *analysis.Summary) error {
	if summary.Records == 0 {
		fmt.Fprintln(s.w, "No records to analyze.")
		return nil
	}

	fmt.Fprintf(s.w, "Analyzed %d players\n\n", summary.Records)

	s.renderTotals(summary)
	s.renderCorrelations(summary)
	s.renderEfficiency(summary)

	return nil
}

func (s *TextSink) renderTotals(summary *analysis.Summary) {
	fmt.Fprintln(s.w, "REGIONAL COMPARISON")

	t := newTable(s.w)
	t.AppendHeader(table.Row{"Region", "Players", "Total Earnings", "Average", "Median", "1st Places", "Total Wins", "Avg Per Win"})
	for _, r := range regionOrder(summary.RegionalTotals) {
		rt := summary.RegionalTotals[r]
		t.AppendRow(table.Row{
			r,
			rt.PlayerCount,
			money(rt.TotalEarnings),
			money(rt.AverageEarnings),
			money(rt.MedianEarnings),
			humanize.Comma(int64(rt.FirstPlaces)),
			humanize.Comma(int64(rt.TotalWins)),
			money(rt.MeanEarningsPerWin),
		})
	}
	t.Render()
	fmt.Fprintln(s.w)
}

func (s *TextSink) renderCorrelations(summary *analysis.Summary) {
	fmt.Fprintln(s.w, "CORRELATION: WINS VS EARNINGS")

	t := newTable(s.w)
	t.AppendHeader(table.Row{"Measure", "r", "Players", "Strength"})
	t.AppendRow(correlationRow("Total wins", summary.Correlation))
	t.AppendRow(correlationRow("1st places", summary.FirstPlaceCorrelation))
	for _, r := range regionOrder(summary.CorrelationByRegion) {
		t.AppendRow(correlationRow(fmt.Sprintf("Total wins (%s)", r), summary.CorrelationByRegion[r]))
	}
	t.Render()
	fmt.Fprintln(s.w)
}

func (s *TextSink) renderEfficiency(summary *analysis.Summary) {
	fmt.Fprintln(s.w, "EFFICIENCY: EARNINGS PER WIN (players with wins)")

	t := newTable(s.w)
	t.AppendHeader(table.Row{"Region", "Players", "Mean", "Median"})
	for _, r := range regionOrder(summary.EfficiencySummary) {
		es := summary.EfficiencySummary[r]
		if es.Count == 0 {
			t.AppendRow(table.Row{r, 0, "-", "-"})
			continue
		}
		t.AppendRow(table.Row{r, es.Count, money(es.Mean), money(es.Median)})
	}
	t.Render()
}

func correlationRow(label string, c analysis.Correlation) table.Row {
	if !c.Defined {
		return table.Row{label, "undefined", c.N, "-"}
	}
	return table.Row{label, fmt.Sprintf("%.4f", c.R), c.N, c.Strength()}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	return t
}

// money formats v as US dollars with two decimals, e.g. $1,234,567.89
func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}
