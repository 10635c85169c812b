package keywords

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/auditlens/seo-audit/internal/logging"
)

// SemrushConfig holds keyword-data API configuration.
type SemrushConfig struct {
	APIKey   string
	BaseURL  string
	Database string
	Limit    int
	Timeout  time.Duration
}

// NewSemrushConfig creates keyword-data configuration from environment variables.
func NewSemrushConfig() *SemrushConfig {
	base := os.Getenv("SEMRUSH_BASE_URL")
	if base == "" {
		base = "https://api.semrush.com"
	}
	return &SemrushConfig{
		APIKey:   os.Getenv("SEMRUSH_API_KEY"),
		BaseURL:  base,
		Database: "us",
		Limit:    50,
		Timeout:  30 * time.Second,
	}
}

// SemrushSource implements Source against the Semrush analytics API,
// falling back to deterministic placeholder data whenever the API is
// unconfigured or any call fails.
type SemrushSource struct {
	cfg    *SemrushConfig
	client *http.Client
	log    *logging.Logger
}

// NewSemrushSource creates a new keyword data source.
func NewSemrushSource(cfg *SemrushConfig) *SemrushSource {
	if cfg == nil {
		cfg = NewSemrushConfig()
	}
	return &SemrushSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logging.Default().WithComponent("keywords"),
	}
}

// Fetch returns the keyword dataset for a domain. It never returns an
// error: any upstream failure degrades to placeholder data.
func (s *SemrushSource) Fetch(ctx context.Context, domain string) (*DomainData, error) {
	if s.cfg.APIKey == "" {
		s.log.Info("keyword API key not configured, using placeholder data", "domain", domain)
		return PlaceholderData(domain), nil
	}

	data, err := s.fetchLive(ctx, domain)
	if err != nil {
		s.log.Warn("keyword fetch failed, using placeholder data", "domain", domain, "error", err)
		return PlaceholderData(domain), nil
	}
	return data, nil
}

func (s *SemrushSource) fetchLive(ctx context.Context, domain string) (*DomainData, error) {
	overview, err := s.report(ctx, "domain_ranks", domain, "Dn,Or,Ot,Ad,At")
	if err != nil {
		return nil, fmt.Errorf("domain overview: %w", err)
	}

	data := &DomainData{Domain: domain}
	if len(overview) > 0 {
		row := overview[0]
		data.TotalKeywords = atoi(row["Or"])
		data.OrganicTraffic = atoi(row["Ot"])
		data.PaidTraffic = atoi(row["At"])
	}

	rankings, err := s.report(ctx, "domain_organic", domain, "Ph,Po,Nq,Kd,Ur")
	if err != nil {
		return nil, fmt.Errorf("organic rankings: %w", err)
	}
	for _, row := range rankings {
		data.Keywords = append(data.Keywords, Keyword{
			Keyword:    row["Ph"],
			Position:   atoi(row["Po"]),
			Volume:     atoi(row["Nq"]),
			Difficulty: atof(row["Kd"]),
			URL:        row["Ur"],
		})
	}

	pages, err := s.report(ctx, "domain_organic_unique", domain, "Ur,Tr,Pc,Po")
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	for _, row := range pages {
		data.TopPages = append(data.TopPages, TopPage{
			URL:      row["Ur"],
			Traffic:  atoi(row["Tr"]),
			Keywords: atoi(row["Pc"]),
			Position: atoi(row["Po"]),
		})
	}

	sort.Slice(data.TopPages, func(i, j int) bool { return data.TopPages[i].Traffic > data.TopPages[j].Traffic })
	data.Trend = syntheticTrend(domain, data.TotalKeywords)
	return data, nil
}

// report runs one Semrush CSV report and parses it into column maps.
func (s *SemrushSource) report(ctx context.Context, reportType, domain, columns string) ([]map[string]string, error) {
	q := url.Values{}
	q.Set("type", reportType)
	q.Set("key", s.cfg.APIKey)
	q.Set("domain", domain)
	q.Set("database", s.cfg.Database)
	q.Set("export_columns", columns)
	q.Set("display_limit", strconv.Itoa(s.cfg.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call keyword API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keyword API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "ERROR") {
		return nil, fmt.Errorf("keyword API error: %s", text)
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, nil
	}

	header := strings.Split(strings.TrimSpace(lines[0]), ";")
	var rows []map[string]string
	for _, line := range lines[1:] {
		fields := strings.Split(strings.TrimSpace(line), ";")
		if len(fields) != len(header) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[shortColumn(name)] = fields[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// shortColumn maps verbose header names back to their export codes.
func shortColumn(name string) string {
	switch strings.TrimSpace(name) {
	case "Domain":
		return "Dn"
	case "Organic Keywords":
		return "Or"
	case "Organic Traffic":
		return "Ot"
	case "Adwords Keywords":
		return "Ad"
	case "Adwords Traffic":
		return "At"
	case "Keyword":
		return "Ph"
	case "Position":
		return "Po"
	case "Search Volume":
		return "Nq"
	case "Keyword Difficulty":
		return "Kd"
	case "Url", "URL":
		return "Ur"
	case "Traffic":
		return "Tr"
	case "Number of Keywords":
		return "Pc"
	}
	return strings.TrimSpace(name)
}

// PlaceholderData builds a deterministic keyword dataset for a domain.
// The same domain always produces the same dataset, so downstream
// spreadsheets and analyses remain stable across runs.
func PlaceholderData(domain string) *DomainData {
	seed := fnv32(domain)

	data := &DomainData{
		Domain:         domain,
		TotalKeywords:  200 + int(seed%800),
		OrganicTraffic: 1500 + int(seed%8500),
		PaidTraffic:    int(seed % 500),
		Backlinks:      300 + int(seed%4700),
		Placeholder:    true,
	}

	terms := []string{"services", "pricing", "reviews", "near me", "best", "how to", "guide", "cost", "alternatives", "examples"}
	base := strings.TrimPrefix(domain, "www.")
	name := strings.SplitN(base, ".", 2)[0]

	for i, term := range terms {
		k := seed + uint32(i)*2654435761
		data.Keywords = append(data.Keywords, Keyword{
			Keyword:    name + " " + term,
			Position:   1 + int(k%30),
			Volume:     100 + int(k%5000),
			Difficulty: float64(20 + k%60),
			URL:        "https://" + domain + "/" + strings.ReplaceAll(term, " ", "-"),
		})
	}
	sort.Slice(data.Keywords, func(i, j int) bool { return data.Keywords[i].Position < data.Keywords[j].Position })

	paths := []string{"/", "/services", "/about", "/blog", "/contact"}
	for i, p := range paths {
		k := seed + uint32(i)*40503
		data.TopPages = append(data.TopPages, TopPage{
			URL:      "https://" + domain + p,
			Traffic:  200 + int(k%3000),
			Keywords: 5 + int(k%120),
			Position: 1 + int(k%20),
		})
	}
	sort.Slice(data.TopPages, func(i, j int) bool { return data.TopPages[i].Traffic > data.TopPages[j].Traffic })

	data.Trend = syntheticTrend(domain, data.TotalKeywords)
	return data
}

// syntheticTrend derives a 6-month keyword-count history ending at current.
func syntheticTrend(domain string, current int) []TrendPoint {
	seed := fnv32(domain)
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	trend := make([]TrendPoint, 0, len(months))
	for i, m := range months {
		step := int(seed%17) * (len(months) - 1 - i)
		count := current - step
		if count < 0 {
			count = 0
		}
		trend = append(trend, TrendPoint{Month: m, Keywords: count})
	}
	return trend
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
