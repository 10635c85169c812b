package workflow

import (
	"fmt"
	"strings"

	"github.com/auditlens/seo-audit/internal/db"
)

// buildSignedEmail renders the subject and HTML body announcing a signed
// audit's deliverables to the team.
func buildSignedEmail(audit *db.Audit, auditURL, excelURL string) (subject, body string) {
	client := audit.ClientName
	if client == "" {
		client = audit.URL
	}
	subject = fmt.Sprintf("Signed audit ready: %s", client)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Audit signed for %s</h2>", client))
	b.WriteString(fmt.Sprintf("<p>Site: <a href=%q>%s</a></p>", audit.URL, audit.URL))
	b.WriteString("<ul>")
	b.WriteString(fmt.Sprintf("<li>SEO score: %s/100</li>", scoreLabel(audit.SeoScore)))
	b.WriteString(fmt.Sprintf("<li>Accessibility score: %s/100</li>", scoreLabel(audit.AccessibilityScore)))
	b.WriteString(fmt.Sprintf("<li>Design score: %s/10</li>", scoreLabel(audit.DesignScore)))
	if overall, ok := overallScore(audit); ok {
		b.WriteString(fmt.Sprintf("<li>Overall: %d/100</li>", overall))
	}
	b.WriteString("</ul>")
	b.WriteString(fmt.Sprintf("<p><a href=%q>View the audit</a> &middot; <a href=%q>Download the keyword spreadsheet</a></p>", auditURL, excelURL))
	return subject, b.String()
}

// buildSignedSummary renders the one-line chat summary for a signed audit.
func buildSignedSummary(audit *db.Audit) string {
	client := audit.ClientName
	if client == "" {
		client = audit.URL
	}
	parts := []string{fmt.Sprintf("Audit signed: %s", client)}
	if audit.SeoScore != nil {
		parts = append(parts, fmt.Sprintf("SEO %d/100", *audit.SeoScore))
	}
	if audit.AccessibilityScore != nil {
		parts = append(parts, fmt.Sprintf("A11y %d/100", *audit.AccessibilityScore))
	}
	if audit.DesignScore != nil {
		parts = append(parts, fmt.Sprintf("Design %d/10", *audit.DesignScore))
	}
	if overall, ok := overallScore(audit); ok {
		parts = append(parts, fmt.Sprintf("Overall %d/100", overall))
	}
	return strings.Join(parts, " | ")
}

// overallScore averages the three scores on a common 0-100 scale. The design
// critique is 1-10, so it is multiplied by ten before averaging. Missing
// scores drop out of the average.
func overallScore(audit *db.Audit) (int, bool) {
	var sum, n int
	if audit.SeoScore != nil {
		sum += *audit.SeoScore
		n++
	}
	if audit.AccessibilityScore != nil {
		sum += *audit.AccessibilityScore
		n++
	}
	if audit.DesignScore != nil {
		sum += *audit.DesignScore * 10
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / n, true
}

func scoreLabel(score *int) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *score)
}
