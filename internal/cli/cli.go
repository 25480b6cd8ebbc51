package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/lpearl21/rl-earnings/internal/config"
	"github.com/lpearl21/rl-earnings/internal/logger"
	"github.com/lpearl21/rl-earnings/internal/telemetry"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is reported by --version and set at build time
var Version = "dev"

var (
	flagConfig      string
	flagDataDir     string
	flagStore       string
	flagVerbose     bool
	flagMetricsFile string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rl-earnings",
		Short: "Scrape and analyze Rocket League player earnings",
		Long: `A CLI tool that collects Rocket League player earnings from Liquipedia,
stores them as a dataset and compares NA, EU and other regions on earnings,
win-to-earnings correlation and earnings per win.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "YAML config file (default $RLE_CONFIG)")
	flags.StringVar(&flagDataDir, "data-dir", config.DefaultDataDir, "Data directory for the dataset")
	flags.StringVar(&flagStore, "store", "csv", "Dataset store: csv or sqlite")
	flags.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	flags.StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newAnalyzeCmd())

	return cmd
}

// runEnv carries what every subcommand needs
type runEnv struct {
	cfg      *config.Config
	log      *logger.Logger
	recorder *telemetry.Recorder
	stdout   io.Writer
}

// setup loads the configuration, applies flag overrides and prepares logging.
// overrides run after the shared flags and before validation.
func setup(cmd *cobra.Command, overrides ...func(*config.Config)) (*runEnv, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("store") {
		cfg.Store = flagStore
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	if flagVerbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.New(level, cmd.ErrOrStderr()).With(logger.Fields{
		"run_id":  uuid.NewString(),
		"command": cmd.Name(),
	})
	logger.SetDefault(log)

	log.Debug("Configuration loaded", logger.Fields{
		"data_dir": cfg.DataDir,
		"store":    cfg.Store,
		"source":   cfg.SourceURL,
	})

	return &runEnv{
		cfg:      cfg,
		log:      log,
		recorder: telemetry.NewRecorder(),
		stdout:   cmd.OutOrStdout(),
	}, nil
}

// finish stamps the stage and writes the metrics file when one is configured.
// A metrics failure is logged but does not fail the run.
func (e *runEnv) finish(stage string) {
	e.recorder.MarkSuccess(stage)
	if e.cfg.MetricsFile == "" {
		return
	}
	if err := e.recorder.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.log.Error("Writing metrics failed", logger.Fields{"path": e.cfg.MetricsFile}, err)
		return
	}
	e.log.Debug("Metrics written", logger.Fields{"path": e.cfg.MetricsFile})
}

func closeStore(store interface{}) {
	if c, ok := store.(io.Closer); ok {
		c.Close()
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
