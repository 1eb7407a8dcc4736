// Package sitemap fetches corpus pages listed in a site's XML sitemap.
//
// The fetcher walks the sitemap (following nested sitemap indexes), pulls
// each page politely behind a rate limiter, and writes the raw HTML into
// the corpus directory where ingestion picks it up. Pages already on disk
// are skipped, so repeated runs only fetch what is new.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bayani-labs/lakbay/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultRequestRate = 1.0 // requests per second
	DefaultUserAgent   = "lakbay-fetch/1.0"

	// maxSitemapDepth bounds recursion through nested sitemap indexes.
	maxSitemapDepth = 3
)

// Config holds configuration for the sitemap fetcher.
type Config struct {
	// OutDir is the directory pages are written to (required).
	OutDir string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles page fetches (default: 1).
	RequestsPerSecond float64

	// UserAgent identifies the fetcher to the remote site.
	UserAgent string
}

// Stats summarises one fetch run.
type Stats struct {
	PagesFetched int
	PagesSkipped int
	PagesFailed  int
}

// Fetcher downloads sitemap-listed pages into the corpus directory.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	outDir    string
	userAgent string
}

// sitemapIndex is the <sitemapindex> document format.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

// urlSet is the <urlset> document format.
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

// New creates a sitemap fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.OutDir == "" {
		return nil, fmt.Errorf("sitemap: output directory is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestRate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		outDir:    cfg.OutDir,
		userAgent: cfg.UserAgent,
	}, nil
}

// Fetch walks the sitemap at sitemapURL and downloads every listed page
// not already present in the output directory. Individual page failures
// are logged and counted, not fatal; a failure to read the sitemap
// itself is.
func (f *Fetcher) Fetch(ctx context.Context, sitemapURL string) (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(f.outDir, 0755); err != nil {
		return stats, fmt.Errorf("create corpus directory: %w", err)
	}

	locs, err := f.collectURLs(ctx, sitemapURL, 0)
	if err != nil {
		return stats, err
	}
	logger.Info("Sitemap lists %d pages", len(locs))

	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		name, err := fileNameFor(loc)
		if err != nil {
			logger.Warn("Skipping unparseable URL %s: %v", loc, err)
			stats.PagesFailed++
			continue
		}

		path := filepath.Join(f.outDir, name)
		if _, err := os.Stat(path); err == nil {
			logger.Debug("Already fetched: %s", name)
			stats.PagesSkipped++
			continue
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		body, err := f.get(ctx, loc)
		if err != nil {
			logger.Warn("Failed to fetch %s: %v", loc, err)
			stats.PagesFailed++
			continue
		}

		if err := os.WriteFile(path, body, 0644); err != nil {
			return stats, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("Fetched %s -> %s", loc, name)
		stats.PagesFetched++
	}

	return stats, nil
}

// collectURLs resolves a sitemap document to page URLs, following nested
// sitemap indexes up to maxSitemapDepth.
func (f *Fetcher) collectURLs(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	if depth > maxSitemapDepth {
		return nil, fmt.Errorf("sitemap nesting exceeds depth %d", maxSitemapDepth)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := f.get(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}

	// A sitemap is either an index of further sitemaps or a URL set.
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		var locs []string
		for _, ref := range index.Sitemaps {
			nested, err := f.collectURLs(ctx, strings.TrimSpace(ref.Loc), depth+1)
			if err != nil {
				logger.Warn("Skipping nested sitemap %s: %v", ref.Loc, err)
				continue
			}
			locs = append(locs, nested...)
		}
		return locs, nil
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	locs := make([]string, 0, len(set.URLs))
	for _, entry := range set.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}

// get performs one GET request and returns the body.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9-]+`)

// fileNameFor derives a stable corpus file name from a page URL. The
// host is dropped; the path collapses to a hyphenated slug so the same
// URL always maps to the same file.
func fileNameFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	slug := strings.ToLower(strings.Trim(u.Path, "/"))
	slug = unsafeChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "index"
	}
	return slug + ".html", nil
}
