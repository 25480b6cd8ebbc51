package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lpearl21/rl-earnings/internal/logger"
)

const (
	PlayerEarningsURL = "https://liquipedia.net/rocketleague/Portal:Statistics/Player_earnings"
	UserAgent         = "rl-earnings/1.0 (github.com/lpearl21/rl-earnings)"
	Timeout           = 30 * time.Second
)

// Source provides the raw markup of the earnings page
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Location describes where the markup comes from, for logging
	Location() string
}

// HTTPOptions configures an HTTPSource
type HTTPOptions struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

// HTTPSource fetches the page over HTTP with retries
type HTTPSource struct {
	client *resty.Client
	url    string
}

// NewHTTPSource creates an HTTPSource, filling unset options with package defaults
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	if opts.URL == "" {
		opts.URL = PlayerEarningsURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetRetryCount(opts.Retries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			// server-side and rate-limit failures are worth another try
			return r != nil && (r.StatusCode() >= 500 || r.StatusCode() == 429)
		}).
		AddRetryHook(func(r *resty.Response, err error) {
			fields := logger.Fields{"url": opts.URL}
			if r != nil && r.Request != nil {
				fields["attempt"] = r.Request.Attempt
				fields["status"] = r.StatusCode()
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			logger.Warn("Retrying page fetch", fields)
		})
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait).SetRetryMaxWaitTime(opts.RetryWait)
	}

	return &HTTPSource{
		client: client,
		url:    opts.URL,
	}
}

// Fetch downloads the page body
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	return resp.Body(), nil
}

// Location returns the page URL
func (s *HTTPSource) Location() string {
	return s.url
}

// FileSource reads a previously saved copy of the page
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads the file contents
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading page file: %w", err)
	}
	return data, nil
}

// Location returns the file path
func (s *FileSource) Location() string {
	return s.path
}

// Scraper combines a Source with an Extractor
type Scraper struct {
	source    Source
	extractor Extractor
}

// New creates a Scraper. A nil extractor selects TableExtractor with the default layout.
func New(source Source, extractor Extractor) *Scraper {
	if extractor == nil {
		extractor = NewTableExtractor(DefaultLayout())
	}
	return &Scraper{
		source:    source,
		extractor: extractor,
	}
}

// Scrape fetches the page and extracts its player entries
func (s *Scraper) Scrape(ctx context.Context) (*Extraction, error) {
	body, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(bytes.NewReader(body))
}
