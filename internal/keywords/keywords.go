package keywords

import "context"

// Keyword is one ranked keyword for a domain.
type Keyword struct {
	Keyword    string  `json:"keyword"`
	Position   int     `json:"position"`
	Volume     int     `json:"volume"`
	Difficulty float64 `json:"difficulty"`
	URL        string  `json:"url"`
}

// TopPage is one of the domain's best-performing pages.
type TopPage struct {
	URL      string `json:"url"`
	Traffic  int    `json:"traffic"`
	Keywords int    `json:"keywords"`
	Position int    `json:"position"`
}

// TrendPoint is a month of keyword-count history.
type TrendPoint struct {
	Month    string `json:"month"`
	Keywords int    `json:"keywords"`
}

// DomainData is the full keyword dataset snapshot for a domain.
type DomainData struct {
	Domain         string       `json:"domain"`
	TotalKeywords  int          `json:"total_keywords"`
	OrganicTraffic int          `json:"organic_traffic"`
	PaidTraffic    int          `json:"paid_traffic"`
	Backlinks      int          `json:"backlinks"`
	Keywords       []Keyword    `json:"keywords"`
	TopPages       []TopPage    `json:"top_pages"`
	Trend          []TrendPoint `json:"trend"`

	// Placeholder marks datasets synthesized locally because the upstream
	// API was unconfigured or failed.
	Placeholder bool `json:"placeholder"`
}

// Source returns keyword rankings, traffic estimates, and top-page
// performance for a domain. Implementations never fail the caller: on any
// internal error they return deterministic placeholder data instead.
type Source interface {
	Fetch(ctx context.Context, domain string) (*DomainData, error)
}
