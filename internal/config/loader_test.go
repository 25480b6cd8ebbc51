package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lpearl21/rl-earnings/internal/config"
	"github.com/lpearl21/rl-earnings/internal/region"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"RLE_CONFIG",
	"RLE_SOURCE_URL",
	"RLE_TIMEOUT",
	"RLE_RETRIES",
	"RLE_CACHE_TTL",
	"RLE_STORE",
	"RLE_LOG_LEVEL",
	"RLE_DATA_DIR",
	"RLE_REGIONS_NA",
	"RLE_REGIONS_EU",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "rl-earnings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SourceURL, convey.ShouldEqual, "https://liquipedia.net/rocketleague/Portal:Statistics/Player_earnings")
				convey.So(cfg.Store, convey.ShouldEqual, "csv")
				convey.So(cfg.DatasetFile, convey.ShouldEqual, "rl_player_earnings.csv")
				convey.So(cfg.Timeout, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.Retries, convey.ShouldEqual, 2)
				convey.So(cfg.CacheTTL, convey.ShouldEqual, time.Hour)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.TableSelector, convey.ShouldEqual, "table.wikitable")
				convey.So(cfg.Regions.NA, convey.ShouldContain, "Canada")
				convey.So(cfg.Regions.EU, convey.ShouldContain, "United Kingdom")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RLE_STORE", "sqlite")
			_ = os.Setenv("RLE_TIMEOUT", "45s")
			_ = os.Setenv("RLE_RETRIES", "5")
			_ = os.Setenv("RLE_CACHE_TTL", "0")
			_ = os.Setenv("RLE_LOG_LEVEL", "debug")
			_ = os.Setenv("RLE_REGIONS_NA", "USA,Canada")
			_ = os.Setenv("RLE_REGIONS_EU", " France , Germany,")

			cfg, err := config.Load("")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Timeout, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.Retries, convey.ShouldEqual, 5)
				convey.So(cfg.CacheTTL, convey.ShouldEqual, time.Duration(0))
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Regions.NA, convey.ShouldResemble, []string{"USA", "Canada"})
				convey.So(cfg.Regions.EU, convey.ShouldResemble, []string{"France", "Germany"})
			})

			convey.Convey("Then every listed country is classified", func() {
				classifier, err := cfg.Classifier()
				convey.So(err, convey.ShouldBeNil)
				convey.So(classifier.Classify("USA"), convey.ShouldEqual, region.NA)
				convey.So(classifier.Classify("Canada"), convey.ShouldEqual, region.NA)
				convey.So(classifier.Classify("Germany"), convey.ShouldEqual, region.EU)
				convey.So(classifier.Classify("Sweden"), convey.ShouldEqual, region.Other)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
source_url: "https://example.com/earnings"
timeout: 10s
data_dir: /tmp/rl-data
regions:
  na: ["United States"]
  eu: ["France", "Germany"]
`)

			cfg, err := config.Load(path)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SourceURL, convey.ShouldEqual, "https://example.com/earnings")
				convey.So(cfg.Timeout, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/rl-data")
				convey.So(cfg.Regions.NA, convey.ShouldResemble, []string{"United States"})
				convey.So(cfg.Regions.EU, convey.ShouldResemble, []string{"France", "Germany"})
			})

			convey.Convey("Then the classifier uses the configured lists", func() {
				classifier, err := cfg.Classifier()
				convey.So(err, convey.ShouldBeNil)
				convey.So(classifier.Classify("Canada"), convey.ShouldEqual, region.Other)
				convey.So(classifier.Classify("germany"), convey.ShouldEqual, region.EU)
			})
		})

		convey.Convey("When RLE_CONFIG points at a file and env vars are also set", func() {
			path := writeConfigFile(t, "store: sqlite\nretries: 1\n")
			_ = os.Setenv("RLE_CONFIG", path)
			_ = os.Setenv("RLE_RETRIES", "4")

			cfg, err := config.Load("")

			convey.Convey("Then env vars take precedence over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Retries, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is invalid", func() {
			_ = os.Setenv("RLE_STORE", "parquet")

			_, err := config.Load("")

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "store")
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.Default()

		convey.Convey("It should be valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("A relative source URL is rejected", func() {
			cfg.SourceURL = "/Portal:Statistics"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A zero timeout is rejected", func() {
			cfg.Timeout = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Negative retries are rejected", func() {
			cfg.Retries = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A negative cache TTL is rejected", func() {
			cfg.CacheTTL = -time.Minute
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An unknown log level is rejected", func() {
			cfg.LogLevel = "verbose"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A country in both regions is rejected", func() {
			cfg.Regions = region.Config{NA: []string{"France"}, EU: []string{"France"}}
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "both")
		})

		convey.Convey("The layout carries the configured selector", func() {
			cfg.TableSelector = "table.earnings"
			convey.So(cfg.Layout().TableSelector, convey.ShouldEqual, "table.earnings")
			convey.So(cfg.HTTPOptions().URL, convey.ShouldEqual, cfg.SourceURL)
		})
	})
}
