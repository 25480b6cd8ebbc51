package cli

import (
	"errors"
	"fmt"

	"github.com/lpearl21/rl-earnings/internal/analysis"
	"github.com/lpearl21/rl-earnings/internal/filter"
	"github.com/lpearl21/rl-earnings/internal/logger"
	"github.com/lpearl21/rl-earnings/internal/report"
	"github.com/lpearl21/rl-earnings/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagRegions       []string
	flagCountries     []string
	flagMinWins       int
	flagMinEarnings   float64
	flagAnalyzeFormat string
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare regions using the stored dataset",
		Long: `Loads the dataset written by 'scrape' and reports regional earnings totals,
the correlation between tournament placements and earnings, and earnings per win by region.`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringSliceVar(&flagRegions, "region", nil, "Only analyze these regions (NA, EU, Other); repeatable")
	cmd.Flags().StringSliceVar(&flagCountries, "country", nil, "Only analyze players from these countries; repeatable")
	cmd.Flags().IntVar(&flagMinWins, "min-wins", 0, "Only analyze players with at least this many placements")
	cmd.Flags().Float64Var(&flagMinEarnings, "min-earnings", 0, "Only analyze players with at least these earnings (USD)")
	cmd.Flags().StringVar(&flagAnalyzeFormat, "format", "text", "Output format: text or json")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(flagAnalyzeFormat)
	if err != nil {
		return err
	}

	f, err := filter.ParseRegions(flagRegions)
	if err != nil {
		return fmt.Errorf("parsing --region: %w", err)
	}
	f.Countries = append(f.Countries, flagCountries...)
	f.MinWins = flagMinWins
	f.MinEarnings = flagMinEarnings

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := env.cfg

	store, err := storage.Open(cfg.Store, cfg.DataDir, cfg.DatasetFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer closeStore(store)

	records, err := store.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNoDataset) {
			return fmt.Errorf("%w (run 'rl-earnings scrape' first)", err)
		}
		return fmt.Errorf("loading dataset: %w", err)
	}

	env.log.Debug("Dataset loaded", logger.Fields{
		"path":    store.Path(),
		"records": len(records),
		"filter":  f.String(),
	})

	records = f.Apply(records)
	summary := analysis.New(records).Summary()
	env.recorder.ObserveAnalysis(summary)

	if !summary.Correlation.Defined {
		env.log.Warn("Correlation is undefined", logger.Fields{
			"qualifying_records": summary.Correlation.N,
		})
	}

	sink, err := report.New(format, env.stdout)
	if err != nil {
		return err
	}
	if err := sink.Render(summary); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	env.finish("analyze")
	return nil
}
