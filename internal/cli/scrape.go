package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lpearl21/rl-earnings/internal/config"
	"github.com/lpearl21/rl-earnings/internal/dataset"
	"github.com/lpearl21/rl-earnings/internal/logger"
	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/report"
	"github.com/lpearl21/rl-earnings/internal/scraper"
	"github.com/lpearl21/rl-earnings/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagInput        string
	flagScrapeFormat string
	flagRefresh      bool
	flagURL          string
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the earnings page and rebuild the dataset",
		Long: `Fetches the Liquipedia player earnings page (or reads a saved copy with --input),
extracts every player row, classifies regions and replaces the stored dataset.

Fetched pages are cached in the data directory for cache_ttl (default 1h).
Use --refresh to bypass the cache.`,
		Args: cobra.NoArgs,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagInput, "input", "", "Read the page from a saved HTML file instead of fetching it")
	cmd.Flags().StringVar(&flagURL, "url", scraper.PlayerEarningsURL, "Earnings page URL")
	cmd.Flags().StringVar(&flagScrapeFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Ignore the cached page and fetch again")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(flagScrapeFormat)
	if err != nil {
		return err
	}

	env, err := setup(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("url") {
			cfg.SourceURL = flagURL
		}
	})
	if err != nil {
		return err
	}
	cfg := env.cfg

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Store, cfg.DataDir, cfg.DatasetFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer closeStore(store)

	var (
		source scraper.Source
		cache  *scraper.CachedSource
	)
	if flagInput != "" {
		source = scraper.NewFileSource(flagInput)
	} else {
		cache = scraper.NewCachedSource(scraper.NewHTTPSource(cfg.HTTPOptions()), filepath.Dir(store.Path()), cfg.CacheTTL, flagRefresh)
		source = cache
	}

	env.log.Info("Scraping player earnings", logger.Fields{"source": source.Location()})

	start := time.Now()
	ext, err := scraper.New(source, scraper.NewTableExtractor(cfg.Layout())).Scrape(cmd.Context())
	if err != nil {
		if cache != nil && errors.Is(err, scraper.ErrSourceFormat) {
			if rmErr := cache.Invalidate(); rmErr != nil {
				env.log.Warn("Could not drop cached page", logger.Fields{"error": rmErr.Error()})
			}
		}
		return fmt.Errorf("scraping %s: %w", source.Location(), err)
	}
	env.recorder.ObserveFetch(time.Since(start))

	cached := cache != nil && cache.FromCache()
	if cached {
		env.recorder.ObserveCacheHit()
		env.log.Info("Using cached page", logger.Fields{"path": cache.Path(), "ttl": cfg.CacheTTL.String()})
	}
	env.recorder.ObserveExtraction(ext.Stats)

	if ext.Stats.RowsDefaulted > 0 {
		env.log.Warn("Unparsable cells defaulted to zero", logger.Fields{
			"rows":   ext.Stats.RowsDefaulted,
			"fields": ext.Stats.FieldsDefaulted,
		})
	}
	env.log.Debug("Extraction finished", logger.Fields{
		"entries":      len(ext.Entries),
		"rows_seen":    ext.Stats.RowsSeen,
		"rows_skipped": ext.Stats.RowsSkipped,
	})

	previous := loadPrevious(env, store)

	ds, err := dataset.NewBuilder(classifier).BuildAndPersist(ext.Entries, store)
	if err != nil {
		return err
	}

	var diff *dataset.DiffResult
	if previous != nil {
		diff = dataset.Diff(previous, ds.Records)
		env.recorder.ObserveDiff(diff)
		env.log.Info("Compared with previous dataset", logger.Fields{
			"new":     len(diff.NewPlayers),
			"removed": len(diff.RemovedPlayers),
			"changed": len(diff.Changes),
		})
	}
	env.recorder.ObserveBuild(ds.Stats)
	env.recorder.ObservePersisted(len(ds.Records))
	env.recorder.ObserveRegions(ds.CountByRegion())

	env.log.Info("Dataset saved", logger.Fields{
		"path":               store.Path(),
		"records":            len(ds.Records),
		"duplicates_dropped": ds.Stats.DuplicatesDropped,
	})

	result := report.NewScrapeResult(source.Location(), store.Path(), ext, ds)
	result.Cached = cached
	result.Diff = diff
	if err := report.WriteScrape(env.stdout, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	env.finish("scrape")
	return nil
}

// loadPrevious returns the dataset from the last scrape, or nil when there is none
// or it cannot be read. A broken previous dataset does not block a new scrape.
func loadPrevious(env *runEnv, store dataset.Store) []*player.Record {
	records, err := store.Load()
	switch {
	case errors.Is(err, storage.ErrNoDataset):
		return nil
	case err != nil:
		env.log.Warn("Previous dataset unreadable, skipping comparison", logger.Fields{"error": err.Error()})
		return nil
	case len(records) == 0:
		return nil
	}
	return records
}
