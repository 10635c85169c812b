package capture

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractSEO(t *testing.T) {
	doc := parseHTML(t, `<html lang="en"><head>
		<title>  Acme Widgets - Handmade Widgets Since 1990  </title>
		<meta name="description" content="Buy handmade widgets.">
	</head><body>
		<h1>Welcome to Acme</h1>
		<h1>   </h1>
		<h1>Second Heading</h1>
	</body></html>`)

	meta := ExtractSEO(doc)

	assert.Equal(t, "Acme Widgets - Handmade Widgets Since 1990", meta.MetaTitle)
	assert.Equal(t, "Buy handmade widgets.", meta.MetaDescription)
	assert.Equal(t, []string{"Welcome to Acme", "Second Heading"}, meta.H1Tags)
}

func TestExtractSEOEmptyDocument(t *testing.T) {
	meta := ExtractSEO(parseHTML(t, `<html><head></head><body></body></html>`))
	assert.Empty(t, meta.MetaTitle)
	assert.Empty(t, meta.MetaDescription)
	assert.Empty(t, meta.H1Tags)
}

func TestCheckAccessibilityCleanPage(t *testing.T) {
	doc := parseHTML(t, `<html lang="en"><head><title>T</title></head><body>
		<h1>Heading</h1>
		<img src="a.png" alt="logo">
		<a href="/x">About</a>
		<button>Go</button>
	</body></html>`)

	report := CheckAccessibility(doc)
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Violations)
}

func TestCheckAccessibilityPenalizesOncePerRule(t *testing.T) {
	// Three images missing alt text count as one image-alt violation.
	doc := parseHTML(t, `<html lang="en"><body>
		<h1>Heading</h1>
		<img src="a.png"><img src="b.png"><img src="c.png">
	</body></html>`)

	report := CheckAccessibility(doc)
	assert.Equal(t, 85, report.Score)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "image-alt", report.Violations[0].ID)
	assert.Equal(t, 3, report.Violations[0].NodeCount)
}

func TestCheckAccessibilityMultipleRules(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<img src="a.png">
		<input type="text">
		<a href="/x"></a>
	</body></html>`)

	report := CheckAccessibility(doc)

	ids := make([]string, len(report.Violations))
	for i, v := range report.Violations {
		ids[i] = v.ID
	}
	assert.Contains(t, ids, "image-alt")
	assert.Contains(t, ids, "label")
	assert.Contains(t, ids, "html-has-lang")
	assert.Contains(t, ids, "link-name")
	assert.Contains(t, ids, "page-has-heading-one")

	// -15 image-alt, -15 label, -10 lang, -10 link-name, -5 heading.
	assert.Equal(t, 45, report.Score)
}

func TestCheckAccessibilityLabelledInputsPass(t *testing.T) {
	doc := parseHTML(t, `<html lang="en"><body>
		<h1>Form</h1>
		<label for="name">Name</label><input type="text" id="name">
		<input type="email" aria-label="Email">
		<label>Phone<input type="tel"></label>
		<input type="hidden" name="csrf">
	</body></html>`)

	report := CheckAccessibility(doc)
	assert.Equal(t, 100, report.Score)
}

func TestCheckAccessibilityEveryRuleViolated(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<img src="a.png">
		<input type="text">
		<a href="/x"></a>
		<button></button>
		<iframe src="/f"></iframe>
	</body></html>`)

	report := CheckAccessibility(doc)
	assert.Len(t, report.Violations, len(a11yRules))
	assert.Equal(t, 30, report.Score)
}
