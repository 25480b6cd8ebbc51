// Package telemetry records pipeline metrics for rl-earnings.
//
// Each CLI run owns a Recorder backed by a private Prometheus registry. The batch job
// has no scrape endpoint, so the collected values are written once at the end of the
// run to a text file that node_exporter's textfile collector can pick up.
package telemetry

import (
	"fmt"
	"time"

	"github.com/lpearl21/rl-earnings/internal/analysis"
	"github.com/lpearl21/rl-earnings/internal/dataset"
	"github.com/lpearl21/rl-earnings/internal/region"
	"github.com/lpearl21/rl-earnings/internal/scraper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rl_earnings"

// Recorder holds the metrics of one run
type Recorder struct {
	registry *prometheus.Registry

	rowsSeen          prometheus.Counter
	rowsSkipped       prometheus.Counter
	rowsDefaulted     prometheus.Counter
	fieldsDefaulted   *prometheus.CounterVec
	duplicatesDropped prometheus.Counter
	emptyNamesDropped prometheus.Counter
	recordsPersisted  prometheus.Counter
	playersByRegion   *prometheus.GaugeVec
	fetchDuration     prometheus.Gauge
	cacheHits         prometheus.Counter
	datasetChanges    *prometheus.CounterVec

	recordsAnalyzed prometheus.Gauge
	correlation     *prometheus.GaugeVec
	lastSuccess     *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rowsSeen: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_seen_total",
			Help:      "Data rows found in the earnings table.",
		}),
		rowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Table rows skipped for missing cells or player name.",
		}),
		rowsDefaulted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_defaulted_total",
			Help:      "Rows with at least one field defaulted to zero.",
		}),
		fieldsDefaulted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_defaulted_total",
			Help:      "Unparsable numeric cells replaced by zero, by field.",
		}, []string{"field"}),
		duplicatesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Repeated player entries dropped by the dataset builder.",
		}),
		emptyNamesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_names_dropped_total",
			Help:      "Entries without a player name dropped by the dataset builder.",
		}),
		recordsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_persisted_total",
			Help:      "Records written to the dataset store.",
		}),
		playersByRegion: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Players in the dataset by region.",
		}, []string{"region"}),
		fetchDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and extracting the source page.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_hits_total",
			Help:      "Scrapes served from the cached page instead of the network.",
		}),
		datasetChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_changes_total",
			Help:      "Differences from the previous dataset, by kind.",
		}, []string{"kind"}),
		recordsAnalyzed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_analyzed",
			Help:      "Records passed to the metrics engine after filtering.",
		}),
		correlation: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correlation",
			Help:      "Pearson r between placements and earnings. Not set when undefined.",
		}, []string{"metric"}),
		lastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run, by stage.",
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveExtraction records the extractor's row statistics
func (r *Recorder) ObserveExtraction(stats scraper.ExtractStats) {
	r.rowsSeen.Add(float64(stats.RowsSeen))
	r.rowsSkipped.Add(float64(stats.RowsSkipped))
	r.rowsDefaulted.Add(float64(stats.RowsDefaulted))
	for field, n := range stats.FieldsDefaulted {
		r.fieldsDefaulted.WithLabelValues(field).Add(float64(n))
	}
}

// ObserveBuild records what the dataset builder dropped
func (r *Recorder) ObserveBuild(stats dataset.BuildStats) {
	r.duplicatesDropped.Add(float64(stats.DuplicatesDropped))
	r.emptyNamesDropped.Add(float64(stats.EmptyNamesDropped))
}

// ObservePersisted records a successful save of n records
func (r *Recorder) ObservePersisted(n int) {
	r.recordsPersisted.Add(float64(n))
}

// ObserveRegions sets the per-region player gauges
func (r *Recorder) ObserveRegions(counts map[region.Region]int) {
	for _, reg := range region.All() {
		r.playersByRegion.WithLabelValues(string(reg)).Set(float64(counts[reg]))
	}
}

// ObserveFetch records how long the scrape took
func (r *Recorder) ObserveFetch(d time.Duration) {
	r.fetchDuration.Set(d.Seconds())
}

// ObserveCacheHit counts a scrape served from the page cache
func (r *Recorder) ObserveCacheHit() {
	r.cacheHits.Inc()
}

// ObserveDiff records the differences from the previous dataset
func (r *Recorder) ObserveDiff(d *dataset.DiffResult) {
	if d == nil {
		return
	}
	r.datasetChanges.WithLabelValues("new").Add(float64(len(d.NewPlayers)))
	r.datasetChanges.WithLabelValues("removed").Add(float64(len(d.RemovedPlayers)))
	r.datasetChanges.WithLabelValues("changed").Add(float64(len(d.Changes)))
}

// ObserveAnalysis records the headline results of an analysis run
func (r *Recorder) ObserveAnalysis(s *analysis.Summary) {
	r.recordsAnalyzed.Set(float64(s.Records))
	if s.Correlation.Defined {
		r.correlation.WithLabelValues("total_wins").Set(s.Correlation.R)
	}
	if s.FirstPlaceCorrelation.Defined {
		r.correlation.WithLabelValues("first_place").Set(s.FirstPlaceCorrelation.R)
	}
}

// MarkSuccess stamps the completion time of stage
func (r *Recorder) MarkSuccess(stage string) {
	r.lastSuccess.WithLabelValues(stage).SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
