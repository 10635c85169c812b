// Package urlstructure computes deterministic URL naming and depth
// diagnostics for a site's sitemap. It makes no external calls: the same
// URL set always yields the same evaluation, regardless of input order.
package urlstructure

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

const (
	IssueTooDeep             = "too_deep"
	IssueInconsistentPattern = "inconsistent_pattern"
	IssuePoorNaming          = "poor_naming"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Severity thresholds, expressed as fractions of all URLs affected. These
// are policy knobs, not laws: tune per client requirements.
const (
	deepHighShare      = 0.20
	camelHighShare     = 0.10
	longPathHighShare  = 0.15
	genericHighShare   = 0.20
	trailingMinShare   = 0.10
	queryMediumShare   = 0.10
	maxRecommendedDepth = 4
	maxPathLength       = 100
	sampleCap           = 10
	topPatternCount     = 10
)

// Issue is one flagged URL-structure problem.
type Issue struct {
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	AffectedURLs   []string `json:"affected_urls"`
	Recommendation string   `json:"recommendation"`
	Severity       string   `json:"severity"`
}

// DepthAnalysis summarizes path-depth distribution across the URL set.
type DepthAnalysis struct {
	Histogram map[int]int `json:"histogram"`
	Mean      float64     `json:"mean"`
	Max       int         `json:"max"`
}

// PatternCount is one generalized path pattern with its frequency.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// Evaluation is the full deterministic result for a URL set.
type Evaluation struct {
	Depth       DepthAnalysis  `json:"depth_analysis"`
	Issues      []Issue        `json:"issues"`
	TopPatterns []PatternCount `json:"top_patterns"`
}

var (
	camelSegmentRe   = regexp.MustCompile(`[a-z][A-Z]`)
	genericSegmentRe = regexp.MustCompile(`^[A-Za-z]+[-_][0-9]+$`)
	variableTailRe   = regexp.MustCompile(`[0-9]`)
)

// Evaluate analyzes a URL list for depth, naming, and pattern problems.
// Input order does not affect the result.
func Evaluate(rawURLs []string) Evaluation {
	urls := make([]string, len(rawURLs))
	copy(urls, rawURLs)
	sort.Strings(urls)

	total := len(urls)
	eval := Evaluation{Depth: DepthAnalysis{Histogram: map[int]int{}}}
	if total == 0 {
		return eval
	}

	var (
		depthSum       int
		tooDeep        []string
		kebab          []string
		underscore     []string
		camel          []string
		longPaths      []string
		generic        []string
		withSlash      []string
		withoutSlash   []string
		withQuery      []string
		patternCounts  = map[string]int{}
	)

	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		path := parsed.Path
		segments := splitSegments(path)

		depth := len(segments)
		eval.Depth.Histogram[depth]++
		depthSum += depth
		if depth > eval.Depth.Max {
			eval.Depth.Max = depth
		}
		if depth > maxRecommendedDepth {
			tooDeep = append(tooDeep, raw)
		}

		hasKebab, hasUnderscore, hasCamel, hasGeneric := false, false, false, false
		for _, seg := range segments {
			lower := strings.ToLower(seg)
			if strings.Contains(lower, "-") {
				hasKebab = true
			}
			if strings.Contains(lower, "_") {
				hasUnderscore = true
			}
			if camelSegmentRe.MatchString(seg) {
				hasCamel = true
			}
			if genericSegmentRe.MatchString(seg) {
				hasGeneric = true
			}
		}
		if hasKebab {
			kebab = append(kebab, raw)
		}
		if hasUnderscore {
			underscore = append(underscore, raw)
		}
		if hasCamel {
			camel = append(camel, raw)
		}
		if hasGeneric {
			generic = append(generic, raw)
		}

		if len(path) > maxPathLength {
			longPaths = append(longPaths, raw)
		}

		if path != "" && path != "/" {
			if strings.HasSuffix(path, "/") {
				withSlash = append(withSlash, raw)
			} else {
				withoutSlash = append(withoutSlash, raw)
			}
		}

		if parsed.RawQuery != "" {
			withQuery = append(withQuery, raw)
		}

		patternCounts[generalizePath(segments)]++
	}

	eval.Depth.Mean = float64(depthSum) / float64(total)

	if len(tooDeep) > 0 {
		severity := SeverityMedium
		if share(len(tooDeep), total) > deepHighShare {
			severity = SeverityHigh
		}
		eval.Issues = append(eval.Issues, Issue{
			Type: IssueTooDeep,
			Description: fmt.Sprintf("%d of %d URLs exceed %d path levels (max observed depth: %d)",
				len(tooDeep), total, maxRecommendedDepth, eval.Depth.Max),
			AffectedURLs:   sample(tooDeep),
			Recommendation: "Flatten the site hierarchy so important pages sit within 3-4 levels of the root",
			Severity:       severity,
		})
	}

	if len(kebab) > 0 && len(underscore) > 0 {
		eval.Issues = append(eval.Issues, Issue{
			Type: IssueInconsistentPattern,
			Description: fmt.Sprintf("Mixed word separators: %d URLs use hyphens while %d use underscores",
				len(kebab), len(underscore)),
			AffectedURLs:   sample(underscore),
			Recommendation: "Standardize on hyphen-separated (kebab-case) path segments",
			Severity:       SeverityMedium,
		})
	}

	if len(camel) > 0 {
		severity := SeverityMedium
		if share(len(camel), total) > camelHighShare {
			severity = SeverityHigh
		}
		eval.Issues = append(eval.Issues, Issue{
			Type:           IssuePoorNaming,
			Description:    fmt.Sprintf("%d of %d URLs contain camelCase path segments", len(camel), total),
			AffectedURLs:   sample(camel),
			Recommendation: "Rewrite camelCase segments as lowercase hyphen-separated words",
			Severity:       severity,
		})
	}

	if len(longPaths) > 0 {
		severity := SeverityLow
		if share(len(longPaths), total) > longPathHighShare {
			severity = SeverityHigh
		}
		eval.Issues = append(eval.Issues, Issue{
			Type:           IssuePoorNaming,
			Description:    fmt.Sprintf("%d of %d URLs have paths longer than %d characters", len(longPaths), total, maxPathLength),
			AffectedURLs:   sample(longPaths),
			Recommendation: "Shorten URL paths to concise, descriptive slugs",
			Severity:       severity,
		})
	}

	if len(generic) > 0 {
		severity := SeverityMedium
		if share(len(generic), total) > genericHighShare {
			severity = SeverityHigh
		}
		eval.Issues = append(eval.Issues, Issue{
			Type:           IssuePoorNaming,
			Description:    fmt.Sprintf("%d of %d URLs use generic numbered segments (e.g. /page-123)", len(generic), total),
			AffectedURLs:   sample(generic),
			Recommendation: "Replace numbered identifiers with descriptive keyword slugs",
			Severity:       severity,
		})
	}

	if len(withSlash) > 0 && len(withoutSlash) > 0 {
		smaller := withSlash
		if len(withoutSlash) < len(withSlash) {
			smaller = withoutSlash
		}
		if share(len(smaller), total) > trailingMinShare {
			eval.Issues = append(eval.Issues, Issue{
				Type: IssueInconsistentPattern,
				Description: fmt.Sprintf("Inconsistent trailing slashes: %d URLs end with '/' and %d do not",
					len(withSlash), len(withoutSlash)),
				AffectedURLs:   sample(smaller),
				Recommendation: "Pick one trailing-slash convention and 301-redirect the other form",
				Severity:       SeverityMedium,
			})
		}
	}

	if len(withQuery) > 0 {
		severity := SeverityLow
		if share(len(withQuery), total) > queryMediumShare {
			severity = SeverityMedium
		}
		eval.Issues = append(eval.Issues, Issue{
			Type:           IssueInconsistentPattern,
			Description:    fmt.Sprintf("%d of %d URLs carry query parameters", len(withQuery), total),
			AffectedURLs:   sample(withQuery),
			Recommendation: "Move crawlable content onto clean parameter-free paths and canonicalize the rest",
			Severity:       severity,
		})
	}

	eval.TopPatterns = topPatterns(patternCounts)
	return eval
}

// splitSegments returns the non-empty path segments.
func splitSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// generalizePath rewrites variable-looking trailing segments as a wildcard
// so /blog/post-123 and /blog/post-456 group under the same pattern.
func generalizePath(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	generalized := make([]string, len(segments))
	copy(generalized, segments)
	for i := len(generalized) - 1; i >= 0; i-- {
		if !looksVariable(generalized[i]) {
			break
		}
		generalized[i] = "*"
	}
	return "/" + strings.Join(generalized, "/")
}

func looksVariable(segment string) bool {
	return variableTailRe.MatchString(segment) || len(segment) > 24
}

// topPatterns returns the most frequent generalized patterns, ties broken
// lexicographically for determinism.
func topPatterns(counts map[string]int) []PatternCount {
	patterns := make([]PatternCount, 0, len(counts))
	for p, c := range counts {
		patterns = append(patterns, PatternCount{Pattern: p, Count: c})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Pattern < patterns[j].Pattern
	})
	if len(patterns) > topPatternCount {
		patterns = patterns[:topPatternCount]
	}
	return patterns
}

func sample(urls []string) []string {
	if len(urls) <= sampleCap {
		return urls
	}
	return urls[:sampleCap]
}

func share(n, total int) float64 {
	return float64(n) / float64(total)
}
