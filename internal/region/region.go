package region

import (
	"fmt"
	"strings"
)

// Region is a coarse geographic classification
type Region string

const (
	NA    Region = "NA"
	EU    Region = "EU"
	Other Region = "Other"
)

// All returns every region in reporting order
func All() []Region {
	return []Region{NA, EU, Other}
}

// Parse converts a persisted region label back into a Region
func Parse(s string) (Region, error) {
	for _, r := range All() {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region: %q", s)
}

// Config holds the country names that make up each non-Other region
type Config struct {
	NA []string `koanf:"na"`
	EU []string `koanf:"eu"`
}

// DefaultConfig returns the country lists used when nothing is configured
func DefaultConfig() Config {
	return Config{
		NA: []string{
			"United States", "USA", "US", "United States of America",
			"Canada", "Mexico",
		},
		EU: []string{
			"France", "England", "Germany", "Spain", "Netherlands",
			"Sweden", "Belgium", "Denmark", "Finland", "Norway",
			"Austria", "Italy", "Poland", "Scotland", "Wales",
			"Ireland", "Northern Ireland", "Portugal", "Iceland",
			"Lithuania", "Switzerland", "United Kingdom",
		},
	}
}

// Classifier maps country names to regions
type Classifier struct {
	lookup map[string]Region
}

// NewClassifier builds a classifier from cfg.
// A country listed under both NA and EU is rejected.
func NewClassifier(cfg Config) (*Classifier, error) {
	c := &Classifier{lookup: make(map[string]Region, len(cfg.NA)+len(cfg.EU))}

	add := func(r Region, countries []string) error {
		for _, country := range countries {
			key := normalize(country)
			if key == "" {
				continue
			}
			if existing, ok := c.lookup[key]; ok && existing != r {
				return fmt.Errorf("country %q listed in both %s and %s", country, existing, r)
			}
			c.lookup[key] = r
		}
		return nil
	}

	if err := add(NA, cfg.NA); err != nil {
		return nil, err
	}
	if err := add(EU, cfg.EU); err != nil {
		return nil, err
	}

	return c, nil
}

// Default returns a classifier over DefaultConfig
func Default() *Classifier {
	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		// DefaultConfig has no overlapping countries
		panic(err)
	}
	return c
}

// Classify returns the region for country, or Other when it is unknown
func (c *Classifier) Classify(country string) Region {
	if r, ok := c.lookup[normalize(country)]; ok {
		return r
	}
	return Other
}

func normalize(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}
