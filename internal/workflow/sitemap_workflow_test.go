package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/auditlens/seo-audit/internal/analyzer"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/sitemap"
)

func sitemapEntries(locs ...string) []sitemap.Entry {
	entries := make([]sitemap.Entry, len(locs))
	for i, loc := range locs {
		entries[i] = sitemap.Entry{Loc: loc}
	}
	return entries
}

func TestSitemapWorkflowHappyPath(t *testing.T) {
	source := new(mockSitemapSource)
	modelAnalyzer := new(mockAnalyzer)
	audits := new(mockAuditStore)

	entries := sitemapEntries(
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/blog/post-1",
	)
	source.On("FetchAllURLs", mock.Anything, "https://example.com/sitemap.xml").Return(entries, nil)
	modelAnalyzer.On("FindContentGaps", mock.Anything, mock.Anything, "example.com").
		Return(&analyzer.ContentGapReport{
			Summary: "Coverage is thin on services pages.",
			Gaps: []analyzer.ContentGap{
				{Category: "Services", Description: "No service detail pages", Priority: "high"},
			},
		}, nil)

	var written map[string]interface{}
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(map[string]interface{})
		}).
		Return(nil)

	wf := NewSitemapWorkflow(source, modelAnalyzer, audits)
	result, err := wf.Run(context.Background(), 5, "https://example.com/sitemap.xml")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalURLs)
	assert.Equal(t, 3, result.CrawledURLs)
	assert.Contains(t, result.Summary, "Content Gaps")

	assert.Equal(t, db.StatusCompleted, written["status"])
	assert.Equal(t, true, written["is_sitemap_audit"])
	assert.Contains(t, string(written["sitemap_urls"].(datatypes.JSON)), `"totalUrls":3`)
}

func TestSitemapWorkflowRejectsNonXMLBeforeAnyWrite(t *testing.T) {
	source := new(mockSitemapSource)
	modelAnalyzer := new(mockAnalyzer)
	audits := new(mockAuditStore)

	wf := NewSitemapWorkflow(source, modelAnalyzer, audits)
	result, err := wf.Run(context.Background(), 5, "https://example.com/sitemap.html")

	assert.Error(t, err)
	assert.Nil(t, result)
	source.AssertNotCalled(t, "FetchAllURLs", mock.Anything, mock.Anything)
	audits.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestSitemapWorkflowFetchFailureRecordsFailureNarrative(t *testing.T) {
	source := new(mockSitemapSource)
	modelAnalyzer := new(mockAnalyzer)
	audits := new(mockAuditStore)

	source.On("FetchAllURLs", mock.Anything, "https://example.com/sitemap.xml").
		Return(nil, errors.New("HTTP 503"))

	var written map[string]interface{}
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(map[string]interface{})
		}).
		Return(nil)

	wf := NewSitemapWorkflow(source, modelAnalyzer, audits)
	result, err := wf.Run(context.Background(), 5, "https://example.com/sitemap.xml")

	assert.Error(t, err)
	assert.Nil(t, result)

	// The audit still closes out with a narrative, not a silent stall.
	require.NotNil(t, written)
	assert.Equal(t, db.StatusCompleted, written["status"])
	assert.Contains(t, written["claude_analysis"].(string), "Sitemap audit failed")
}

func TestSitemapWorkflowEmptySitemapIsFailure(t *testing.T) {
	source := new(mockSitemapSource)
	modelAnalyzer := new(mockAnalyzer)
	audits := new(mockAuditStore)

	source.On("FetchAllURLs", mock.Anything, "https://example.com/sitemap.xml").
		Return([]sitemap.Entry{}, nil)
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).Return(nil)

	wf := NewSitemapWorkflow(source, modelAnalyzer, audits)
	_, err := wf.Run(context.Background(), 5, "https://example.com/sitemap.xml")

	assert.Error(t, err)
	modelAnalyzer.AssertNotCalled(t, "FindContentGaps", mock.Anything, mock.Anything, mock.Anything)
}

func TestSitemapWorkflowCapsContentGapSample(t *testing.T) {
	source := new(mockSitemapSource)
	modelAnalyzer := new(mockAnalyzer)
	audits := new(mockAuditStore)

	locs := make([]string, 750)
	for i := range locs {
		locs[i] = fmt.Sprintf("https://example.com/page-%d", i)
	}
	source.On("FetchAllURLs", mock.Anything, "https://example.com/sitemap.xml").
		Return(sitemapEntries(locs...), nil)

	var sampled []string
	modelAnalyzer.On("FindContentGaps", mock.Anything, mock.Anything, "example.com").
		Run(func(args mock.Arguments) {
			sampled = args.Get(1).([]string)
		}).
		Return(&analyzer.ContentGapReport{}, nil)
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).Return(nil)

	wf := NewSitemapWorkflow(source, modelAnalyzer, audits)
	result, err := wf.Run(context.Background(), 5, "https://example.com/sitemap.xml")
	require.NoError(t, err)

	assert.Len(t, sampled, 500)
	assert.Equal(t, 750, result.TotalURLs)
	assert.Equal(t, 500, result.CrawledURLs)
}
