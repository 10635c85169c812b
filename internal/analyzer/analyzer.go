package analyzer

import (
	"context"

	"github.com/auditlens/seo-audit/internal/capture"
	"github.com/auditlens/seo-audit/internal/keywords"
)

// DesignCritique is the structured result of a vision review of the page.
type DesignCritique struct {
	Score           int      `json:"score"` // 1-10
	Analysis        string   `json:"analysis"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// DesignContext carries the non-visual signals alongside the screenshots.
type DesignContext struct {
	URL                string
	SeoScore           int
	AccessibilityScore int
	Violations         []capture.Violation
	SEO                capture.SEOMetadata
}

// ContentGap is one inferred missing-content finding for a site.
type ContentGap struct {
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"` // high | medium | low
	SuggestedPages []string `json:"suggested_pages"`
	Reasoning      string   `json:"reasoning"`
}

// ContentGapReport is the structured result of sitemap content analysis.
type ContentGapReport struct {
	Gaps    []ContentGap `json:"gaps"`
	Summary string       `json:"summary"`
}

// StrategyInput summarizes an audit for strategic-roadmap synthesis.
type StrategyInput struct {
	URL                string
	ClientName         string
	SeoScore           *int
	AccessibilityScore *int
	DesignScore        *int
	ExistingAnalysis   string
}

// Analyzer is the model-backed critique capability consumed by the workflows.
type Analyzer interface {
	// CritiqueDesign reviews desktop and mobile screenshots and returns a
	// structured design critique.
	CritiqueDesign(ctx context.Context, desktop, mobile []byte, dctx DesignContext) (*DesignCritique, error)

	// FindContentGaps infers missing content categories from a site's URL list.
	FindContentGaps(ctx context.Context, urls []string, domain string) (*ContentGapReport, error)

	// SynthesizeStrategy produces a long-form markdown strategic roadmap from
	// the audit summary and keyword dataset.
	SynthesizeStrategy(ctx context.Context, input StrategyInput, dataset *keywords.DomainData) (string, error)
}
