package urlstructure

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findIssue(issues []Issue, issueType string) *Issue {
	for i := range issues {
		if issues[i].Type == issueType {
			return &issues[i]
		}
	}
	return nil
}

func TestEvaluateIsOrderIndependent(t *testing.T) {
	urls := []string{
		"https://example.com/a/b/c/d/e/deep-page",
		"https://example.com/about",
		"https://example.com/blog/myCamelPost",
		"https://example.com/shop/item_one",
		"https://example.com/shop/item-two",
	}
	reversed := make([]string, len(urls))
	for i, u := range urls {
		reversed[len(urls)-1-i] = u
	}

	assert.Equal(t, Evaluate(urls), Evaluate(reversed))
}

func TestEvaluateEmptyInput(t *testing.T) {
	eval := Evaluate(nil)
	assert.Empty(t, eval.Issues)
	assert.Empty(t, eval.TopPatterns)
	assert.Equal(t, 0, eval.Depth.Max)
}

func TestEvaluateDepthIssueSeverity(t *testing.T) {
	// 20 URLs, 6 of them deeper than four levels: 30% affected means high.
	var urls []string
	for i := 0; i < 14; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/page-%d", i))
	}
	for i := 0; i < 6; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/a/b/c/d/e/leaf-%d", i))
	}

	eval := Evaluate(urls)
	issue := findIssue(eval.Issues, IssueTooDeep)
	require.NotNil(t, issue)
	assert.Equal(t, SeverityHigh, issue.Severity)
	assert.Equal(t, 6, eval.Depth.Max)

	// Same set but only 2 deep URLs: 10% affected stays medium.
	urls = urls[:14]
	for i := 0; i < 2; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/a/b/c/d/e/leaf-%d", i))
	}
	for i := 0; i < 4; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/extra-%d", i))
	}
	eval = Evaluate(urls)
	issue = findIssue(eval.Issues, IssueTooDeep)
	require.NotNil(t, issue)
	assert.Equal(t, SeverityMedium, issue.Severity)
}

func TestEvaluateMixedSeparators(t *testing.T) {
	urls := []string{
		"https://example.com/shop/red-widgets",
		"https://example.com/shop/blue-widgets",
		"https://example.com/shop/green_widgets",
	}

	eval := Evaluate(urls)
	issue := findIssue(eval.Issues, IssueInconsistentPattern)
	require.NotNil(t, issue)
	assert.Contains(t, issue.Description, "underscores")
	assert.Contains(t, issue.AffectedURLs, "https://example.com/shop/green_widgets")
}

func TestEvaluateCamelCaseNaming(t *testing.T) {
	urls := []string{
		"https://example.com/blog/myFirstPost",
		"https://example.com/about",
		"https://example.com/contact",
	}

	eval := Evaluate(urls)
	issue := findIssue(eval.Issues, IssuePoorNaming)
	require.NotNil(t, issue)
	// 1 of 3 camelCase URLs is over the 10% high threshold.
	assert.Equal(t, SeverityHigh, issue.Severity)
}

func TestEvaluateCleanURLsProduceNoIssues(t *testing.T) {
	urls := []string{
		"https://example.com/about",
		"https://example.com/contact",
		"https://example.com/services/web-design",
	}
	eval := Evaluate(urls)
	assert.Empty(t, eval.Issues)
}

func TestEvaluateAffectedURLSampleIsCapped(t *testing.T) {
	var urls []string
	for i := 0; i < 40; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/a/b/c/d/e/page-%d", i))
	}

	eval := Evaluate(urls)
	issue := findIssue(eval.Issues, IssueTooDeep)
	require.NotNil(t, issue)
	assert.Len(t, issue.AffectedURLs, 10)
	assert.Contains(t, issue.Description, "40 of 40")
}

func TestTopPatternsGroupVariableSegments(t *testing.T) {
	urls := []string{
		"https://example.com/blog/post-1",
		"https://example.com/blog/post-2",
		"https://example.com/blog/post-3",
		"https://example.com/about",
	}

	eval := Evaluate(urls)
	require.NotEmpty(t, eval.TopPatterns)
	assert.Equal(t, "/blog/*", eval.TopPatterns[0].Pattern)
	assert.Equal(t, 3, eval.TopPatterns[0].Count)
}

func TestTopPatternsTieBreakIsLexicographic(t *testing.T) {
	urls := []string{
		"https://example.com/alpha/one",
		"https://example.com/beta/one",
	}

	eval := Evaluate(urls)
	require.Len(t, eval.TopPatterns, 2)
	assert.Equal(t, "/alpha/one", eval.TopPatterns[0].Pattern)
	assert.Equal(t, "/beta/one", eval.TopPatterns[1].Pattern)
}

func TestEvaluateQueryParameterIssue(t *testing.T) {
	urls := []string{
		"https://example.com/products?id=1",
		"https://example.com/products?id=2",
		"https://example.com/about",
		"https://example.com/contact",
	}

	eval := Evaluate(urls)
	issue := findIssue(eval.Issues, IssueInconsistentPattern)
	require.NotNil(t, issue)
	// 50% with query parameters exceeds the 10% medium threshold.
	assert.Equal(t, SeverityMedium, issue.Severity)
}
