package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/auditlens/seo-audit/internal/logging"
)

// Entry is one leaf URL record from a sitemap.
type Entry struct {
	Loc        string  `json:"loc"`
	LastMod    string  `json:"lastmod,omitempty"`
	ChangeFreq string  `json:"changefreq,omitempty"`
	Priority   float64 `json:"priority,omitempty"`
}

// Source fetches a sitemap and returns its flattened leaf URL entries,
// transparently recursing through sitemap-index files.
type Source interface {
	FetchAllURLs(ctx context.Context, sitemapURL string) ([]Entry, error)
}

// HTTPSource implements Source over plain HTTP.
type HTTPSource struct {
	client   *http.Client
	maxDepth int
	maxBytes int64
	log      *logging.Logger
}

// NewHTTPSource creates a new sitemap fetcher.
func NewHTTPSource() *HTTPSource {
	return &HTTPSource{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxDepth: 3,
		maxBytes: 20 << 20,
		log:      logging.Default().WithComponent("sitemap"),
	}
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlURL `xml:"url"`
}

type xmlSitemapRef struct {
	Loc string `xml:"loc"`
}

type xmlSitemapIndex struct {
	XMLName  xml.Name        `xml:"sitemapindex"`
	Sitemaps []xmlSitemapRef `xml:"sitemap"`
}

// FetchAllURLs resolves a sitemap (or sitemap index) into a flat list of
// valid absolute URL entries. Syntactically invalid entries are dropped.
func (s *HTTPSource) FetchAllURLs(ctx context.Context, sitemapURL string) ([]Entry, error) {
	return s.fetch(ctx, sitemapURL, 0)
}

func (s *HTTPSource) fetch(ctx context.Context, sitemapURL string, depth int) ([]Entry, error) {
	if depth > s.maxDepth {
		s.log.Warn("sitemap index nesting too deep, skipping", "url", sitemapURL, "depth", depth)
		return nil, nil
	}

	body, err := s.download(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	// Try the index shape first: a sitemap that lists other sitemaps.
	var index xmlSitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		var entries []Entry
		for _, ref := range index.Sitemaps {
			loc := strings.TrimSpace(ref.Loc)
			if loc == "" {
				continue
			}
			child, err := s.fetch(ctx, loc, depth+1)
			if err != nil {
				s.log.Warn("failed to fetch child sitemap, skipping", "url", loc, "error", err)
				continue
			}
			entries = append(entries, child...)
		}
		return entries, nil
	}

	var urlset xmlURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap XML from %s: %w", sitemapURL, err)
	}

	entries := make([]Entry, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		loc := strings.TrimSpace(u.Loc)
		if !validLoc(loc) {
			s.log.Debug("dropping invalid sitemap entry", "loc", loc)
			continue
		}
		entry := Entry{
			Loc:        loc,
			LastMod:    strings.TrimSpace(u.LastMod),
			ChangeFreq: strings.TrimSpace(u.ChangeFreq),
		}
		if p, err := strconv.ParseFloat(strings.TrimSpace(u.Priority), 64); err == nil {
			entry.Priority = p
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *HTTPSource) download(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "SEO-Audit/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap fetch returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap body: %w", err)
	}
	return body, nil
}

// validLoc reports whether loc is a syntactically valid absolute URL.
func validLoc(loc string) bool {
	if loc == "" {
		return false
	}
	parsed, err := url.Parse(loc)
	if err != nil {
		return false
	}
	return parsed.IsAbs() && parsed.Host != ""
}
