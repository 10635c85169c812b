package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/auditlens/seo-audit/internal/analyzer"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/sitemap"
	"github.com/auditlens/seo-audit/internal/store"
	"github.com/auditlens/seo-audit/internal/urlstructure"
)

// contentGapSampleCap bounds how many sitemap URLs are sent to the model
// for content-gap inference.
const contentGapSampleCap = 500

// SitemapResult summarizes a sitemap-audit run.
type SitemapResult struct {
	TotalURLs          int                        `json:"total_urls"`
	CrawledURLs        int                        `json:"crawled_urls"`
	ContentGaps        *analyzer.ContentGapReport `json:"content_gaps,omitempty"`
	URLStructureIssues []urlstructure.Issue       `json:"url_structure_issues,omitempty"`
	Summary            string                     `json:"summary"`
}

// SitemapWorkflow audits an entire site from its sitemap: URL-structure
// evaluation and model-inferred content gaps, persisted onto the audit row.
type SitemapWorkflow struct {
	sitemaps sitemap.Source
	analyzer analyzer.Analyzer
	audits   store.AuditStore
	log      *logging.Logger
}

// NewSitemapWorkflow creates a new sitemap-audit orchestrator.
func NewSitemapWorkflow(sitemaps sitemap.Source, modelAnalyzer analyzer.Analyzer, audits store.AuditStore) *SitemapWorkflow {
	return &SitemapWorkflow{
		sitemaps: sitemaps,
		analyzer: modelAnalyzer,
		audits:   audits,
		log:      logging.Default().WithComponent("sitemap_workflow"),
	}
}

// Run executes a sitemap audit. The URL suffix check is a pre-flight: it
// fails before any database write. Every later failure still records a
// completed audit carrying a failure narrative, then surfaces the error.
func (w *SitemapWorkflow) Run(ctx context.Context, auditID uint, sitemapURL string) (*SitemapResult, error) {
	if !strings.HasSuffix(strings.ToLower(sitemapURL), ".xml") {
		return nil, fmt.Errorf("sitemap URL must end in .xml, got %q", sitemapURL)
	}

	log := w.log.WithAudit(auditID)

	result, err := w.execute(ctx, auditID, sitemapURL)
	if err != nil {
		w.persistFailure(ctx, log, auditID, err)
		return nil, err
	}

	log.Info("sitemap audit completed", "total_urls", result.TotalURLs, "crawled_urls", result.CrawledURLs)
	return result, nil
}

func (w *SitemapWorkflow) execute(ctx context.Context, auditID uint, sitemapURL string) (*SitemapResult, error) {
	entries, err := w.sitemaps.FetchAllURLs(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("sitemap %s contains no valid URLs", sitemapURL)
	}

	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.Loc
	}

	evaluation := urlstructure.Evaluate(urls)

	sampled := urls
	if len(sampled) > contentGapSampleCap {
		sampled = sampled[:contentGapSampleCap]
	}
	gaps, err := w.analyzer.FindContentGaps(ctx, sampled, DomainOf(sitemapURL))
	if err != nil {
		return nil, fmt.Errorf("content gap analysis: %w", err)
	}

	result := &SitemapResult{
		TotalURLs:          len(urls),
		CrawledURLs:        len(sampled),
		ContentGaps:        gaps,
		URLStructureIssues: evaluation.Issues,
		Summary:            buildSitemapSummary(len(urls), evaluation, gaps),
	}

	counts, _ := json.Marshal(map[string]int{
		"totalUrls":   result.TotalURLs,
		"crawledUrls": result.CrawledURLs,
	})
	gapsJSON, err := json.Marshal(gaps)
	if err != nil {
		return nil, fmt.Errorf("encode content gaps: %w", err)
	}
	issuesJSON, err := json.Marshal(evaluation)
	if err != nil {
		return nil, fmt.Errorf("encode structure evaluation: %w", err)
	}

	fields := map[string]interface{}{
		"is_sitemap_audit":     true,
		"sitemap_urls":         datatypes.JSON(counts),
		"content_gaps":         datatypes.JSON(gapsJSON),
		"url_structure_issues": datatypes.JSON(issuesJSON),
		"claude_analysis":      result.Summary,
		"status":               db.StatusCompleted,
	}
	if err := w.audits.UpdateFields(ctx, auditID, fields); err != nil {
		return nil, fmt.Errorf("persist sitemap results: %w", err)
	}
	return result, nil
}

// persistFailure still closes out the audit so operators see a terminal
// record with the failure narrative instead of a silently stalled row.
func (w *SitemapWorkflow) persistFailure(ctx context.Context, log *logging.Logger, auditID uint, cause error) {
	fields := map[string]interface{}{
		"is_sitemap_audit": true,
		"claude_analysis":  fmt.Sprintf("Sitemap audit failed: %v", cause),
		"status":           db.StatusCompleted,
	}
	if err := w.audits.UpdateFields(ctx, auditID, fields); err != nil {
		log.Error("failed to record sitemap audit failure", "cause", cause, "error", err)
		return
	}
	log.Warn("sitemap audit failed, failure recorded", "error", cause)
}

func buildSitemapSummary(totalURLs int, evaluation urlstructure.Evaluation, gaps *analyzer.ContentGapReport) string {
	var b strings.Builder
	b.WriteString("# Sitemap Audit\n\n")
	b.WriteString(fmt.Sprintf("Analyzed %d URLs (mean depth %.1f, max depth %d).\n\n",
		totalURLs, evaluation.Depth.Mean, evaluation.Depth.Max))

	b.WriteString("## URL Structure\n\n")
	if len(evaluation.Issues) == 0 {
		b.WriteString("No structural issues found.\n")
	}
	for _, issue := range evaluation.Issues {
		b.WriteString(fmt.Sprintf("- **%s** (%s): %s. %s\n", issue.Type, issue.Severity, issue.Description, issue.Recommendation))
	}

	if gaps != nil {
		b.WriteString("\n## Content Gaps\n\n")
		if gaps.Summary != "" {
			b.WriteString(gaps.Summary)
			b.WriteString("\n\n")
		}
		for _, gap := range gaps.Gaps {
			b.WriteString(fmt.Sprintf("- **%s** (%s priority): %s\n", gap.Category, gap.Priority, gap.Description))
		}
	}
	return b.String()
}
