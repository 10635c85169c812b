package capture

import (
	"context"
)

// SEOMetadata holds the on-page signals extracted from the rendered document.
type SEOMetadata struct {
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	H1Tags          []string `json:"h1_tags"`
}

// Violation is a single accessibility finding.
type Violation struct {
	ID          string `json:"id"`
	Impact      string `json:"impact"` // critical | serious | moderate | minor
	Description string `json:"description"`
	Help        string `json:"help"`
	HelpURL     string `json:"help_url"`
	NodeCount   int    `json:"node_count"`
}

// AccessibilityReport aggregates violations into a 0-100 score.
type AccessibilityReport struct {
	Violations []Violation `json:"violations"`
	Score      int         `json:"score"`
}

// WebVitals holds the core web vital metrics observed during capture.
type WebVitals struct {
	LCP float64 `json:"lcp"`
	FID float64 `json:"fid"`
	CLS float64 `json:"cls"`
}

// Result is everything PageCapture produces for one URL. Screenshots are
// guaranteed to be under the ingestion byte/dimension bounds.
type Result struct {
	DesktopScreenshot []byte
	MobileScreenshot  []byte
	Accessibility     AccessibilityReport
	SEO               SEOMetadata
	Vitals            WebVitals
}

// PageCapture renders a URL and returns screenshots, an accessibility
// report, and extracted SEO metadata.
type PageCapture interface {
	Capture(ctx context.Context, url string) (*Result, error)
}
