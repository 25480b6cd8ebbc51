package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lpearl21/rl-earnings/internal/logger"
)

const cacheFilePrefix = "player_earnings-"

// CacheFileName returns the cache file name for a source location.
// Each location gets its own file, so pages from different URLs never mix.
func CacheFileName(location string) string {
	return cacheFilePrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(location)).String() + ".html"
}

// CachedSource keeps the last fetched page on disk and serves it while it is younger
// than the TTL. Liquipedia asks clients not to re-download pages on every run.
type CachedSource struct {
	inner   Source
	path    string
	ttl     time.Duration
	refresh bool

	// fromCache reports whether the last Fetch was served from disk
	fromCache bool
}

// NewCachedSource wraps inner with a page cache in dir, keyed by inner.Location().
// A zero TTL or refresh=true always fetches (the fresh page is still written to the cache).
func NewCachedSource(inner Source, dir string, ttl time.Duration, refresh bool) *CachedSource {
	return &CachedSource{
		inner:   inner,
		path:    filepath.Join(dir, CacheFileName(inner.Location())),
		ttl:     ttl,
		refresh: refresh,
	}
}

// Fetch returns the cached page if it is fresh, otherwise fetches and stores a new copy
func (s *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	s.fromCache = false

	if data, ok := s.cached(); ok {
		s.fromCache = true
		logger.Debug("Page cache hit", logger.Fields{"path": s.path, "source": s.Location()})
		return data, nil
	}

	data, err := s.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store(data); err != nil {
		return nil, err
	}
	return data, nil
}

// FromCache reports whether the last Fetch was served from disk
func (s *CachedSource) FromCache() bool {
	return s.fromCache
}

// Location returns the wrapped source's location
func (s *CachedSource) Location() string {
	return s.inner.Location()
}

// Path returns the cache file location
func (s *CachedSource) Path() string {
	return s.path
}

// Invalidate removes the cached page, e.g. after it failed to parse
func (s *CachedSource) Invalidate() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cached page: %w", err)
	}
	return nil
}

func (s *CachedSource) cached() ([]byte, bool) {
	if s.refresh || s.ttl <= 0 {
		return nil, false
	}

	info, err := os.Stat(s.path)
	if err != nil || time.Since(info.ModTime()) > s.ttl {
		return nil, false
	}

	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (s *CachedSource) store(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("caching page: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("caching page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("caching page: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("caching page: %w", err)
	}
	return nil
}
