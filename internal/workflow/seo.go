package workflow

import (
	"net/url"
	"strings"

	"github.com/auditlens/seo-audit/internal/capture"
)

// SEO score penalties. The score starts at 100 and floors at 0.
const (
	penaltyMissingTitle       = 20
	penaltyTitleLength        = 10
	penaltyMissingDescription = 20
	penaltyDescriptionLength  = 10
	penaltyNoH1               = 15
	penaltyMultipleH1         = 5

	titleMinLen       = 30
	titleMaxLen       = 60
	descriptionMinLen = 120
	descriptionMaxLen = 160
)

// CalculateSEOScore scores on-page metadata deterministically.
func CalculateSEOScore(meta capture.SEOMetadata) int {
	score := 100

	title := strings.TrimSpace(meta.MetaTitle)
	if title == "" {
		score -= penaltyMissingTitle
	} else if len(title) < titleMinLen || len(title) > titleMaxLen {
		score -= penaltyTitleLength
	}

	desc := strings.TrimSpace(meta.MetaDescription)
	if desc == "" {
		score -= penaltyMissingDescription
	} else if len(desc) < descriptionMinLen || len(desc) > descriptionMaxLen {
		score -= penaltyDescriptionLength
	}

	switch {
	case len(meta.H1Tags) == 0:
		score -= penaltyNoH1
	case len(meta.H1Tags) > 1:
		score -= penaltyMultipleH1
	}

	if score < 0 {
		score = 0
	}
	return score
}

// IsHomepage reports whether the URL points at a site's root path.
func IsHomepage(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Path == "" || parsed.Path == "/"
}

// DomainOf extracts the bare hostname of a URL.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
