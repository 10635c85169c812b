package analyzer

import (
	"fmt"
	"strings"

	"github.com/auditlens/seo-audit/internal/keywords"
)

const designSystemPrompt = `You are a senior web designer reviewing a website for a sales proposal.
Respond with a single JSON object and nothing else:
{"score": <1-10>, "analysis": "<2-3 paragraph narrative>", "strengths": ["..."], "weaknesses": ["..."], "recommendations": ["..."]}
Limit strengths and weaknesses to 3 items each and recommendations to 5.`

func designPrompt(dctx DesignContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the design of %s. The first image is the desktop rendering, the second is mobile.\n\n", dctx.URL)
	fmt.Fprintf(&b, "Context from automated checks:\n")
	fmt.Fprintf(&b, "- SEO score: %d/100 (title: %q, description length: %d, h1 count: %d)\n",
		dctx.SeoScore, dctx.SEO.MetaTitle, len(dctx.SEO.MetaDescription), len(dctx.SEO.H1Tags))
	fmt.Fprintf(&b, "- Accessibility score: %d/100 with %d violation types:\n", dctx.AccessibilityScore, len(dctx.Violations))
	for _, v := range dctx.Violations {
		fmt.Fprintf(&b, "  - [%s] %s (%d nodes)\n", v.Impact, v.Description, v.NodeCount)
	}
	b.WriteString("\nAssess visual hierarchy, layout, typography, color, mobile responsiveness, and trust signals.")
	return b.String()
}

const contentGapSystemPrompt = `You are an SEO content strategist. Given a site's URL inventory, identify missing
content that comparable sites in this space typically have. Respond with a single JSON object and nothing else:
{"gaps": [{"category": "...", "description": "...", "priority": "high|medium|low", "suggested_pages": ["..."], "reasoning": "..."}], "summary": "<short narrative>"}`

func contentGapPrompt(urls []string, domain string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s\n", domain)
	fmt.Fprintf(&b, "The sitemap contains %d URLs. Representative sample:\n\n", len(urls))
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	b.WriteString("\nIdentify content categories that appear to be missing and would help this site compete.")
	return b.String()
}

const strategySystemPrompt = `You are a senior SEO consultant writing a strategic roadmap for a newly signed client.
Write in markdown with these sections: Executive Summary, Quick Wins (first 30 days),
Medium-Term Strategy (3-6 months), Long-Term Strategy (6-12 months), Prioritized Action Items,
Keyword Optimization Targets, Content Recommendations, Technical Recommendations.
Be specific and reference the actual data provided.`

func strategyPrompt(input StrategyInput, dataset *keywords.DomainData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\nSite: %s\n\n", orUnknown(input.ClientName), input.URL)

	b.WriteString("Audit scores:\n")
	fmt.Fprintf(&b, "- SEO: %s/100\n", fmtScore(input.SeoScore))
	fmt.Fprintf(&b, "- Accessibility: %s/100\n", fmtScore(input.AccessibilityScore))
	fmt.Fprintf(&b, "- Design: %s/10\n\n", fmtScore(input.DesignScore))

	if input.ExistingAnalysis != "" {
		b.WriteString("Prior design critique:\n")
		b.WriteString(truncate(input.ExistingAnalysis, 2000))
		b.WriteString("\n\n")
	}

	if dataset != nil {
		fmt.Fprintf(&b, "Keyword dataset for %s:\n", dataset.Domain)
		fmt.Fprintf(&b, "- Total keywords: %d, organic traffic: %d, paid traffic: %d, backlinks: %d\n",
			dataset.TotalKeywords, dataset.OrganicTraffic, dataset.PaidTraffic, dataset.Backlinks)
		b.WriteString("- Current rankings:\n")
		for _, k := range dataset.Keywords {
			fmt.Fprintf(&b, "  - %q position %d, volume %d, difficulty %.0f\n", k.Keyword, k.Position, k.Volume, k.Difficulty)
		}
		b.WriteString("- Top pages:\n")
		for _, p := range dataset.TopPages {
			fmt.Fprintf(&b, "  - %s traffic %d, %d keywords\n", p.URL, p.Traffic, p.Keywords)
		}
	}

	b.WriteString("\nProduce the full strategic roadmap.")
	return b.String()
}

func fmtScore(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *v)
}

func orUnknown(s string) string {
	if s == "" {
		return "(not recorded)"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
