package capture

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractSEO pulls the title, meta description, and H1 tags out of a parsed document.
func ExtractSEO(doc *goquery.Document) SEOMetadata {
	meta := SEOMetadata{
		MetaTitle: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.MetaDescription = strings.TrimSpace(desc)
	}

	doc.Find("h1").Each(func(i int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			meta.H1Tags = append(meta.H1Tags, text)
		}
	})

	return meta
}

// a11yRule is one rule-based accessibility check run against the DOM.
type a11yRule struct {
	id          string
	impact      string
	description string
	help        string
	helpURL     string
	count       func(doc *goquery.Document) int
}

var a11yRules = []a11yRule{
	{
		id:          "image-alt",
		impact:      "critical",
		description: "Images must have alternate text",
		help:        "Add an alt attribute to every informative <img>",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/image-alt",
		count: func(doc *goquery.Document) int {
			n := 0
			doc.Find("img").Each(func(i int, sel *goquery.Selection) {
				if _, ok := sel.Attr("alt"); !ok {
					n++
				}
			})
			return n
		},
	},
	{
		id:          "label",
		impact:      "critical",
		description: "Form elements must have labels",
		help:        "Associate a <label> or aria-label with every input",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/label",
		count: func(doc *goquery.Document) int {
			n := 0
			doc.Find("input, select, textarea").Each(func(i int, sel *goquery.Selection) {
				if t, _ := sel.Attr("type"); t == "hidden" || t == "submit" || t == "button" {
					return
				}
				if _, ok := sel.Attr("aria-label"); ok {
					return
				}
				if _, ok := sel.Attr("aria-labelledby"); ok {
					return
				}
				if id, ok := sel.Attr("id"); ok {
					if doc.Find(`label[for="` + id + `"]`).Length() > 0 {
						return
					}
				}
				if sel.ParentsFiltered("label").Length() > 0 {
					return
				}
				n++
			})
			return n
		},
	},
	{
		id:          "html-has-lang",
		impact:      "serious",
		description: "The <html> element must have a lang attribute",
		help:        "Set lang on the html element",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/html-has-lang",
		count: func(doc *goquery.Document) int {
			if lang, ok := doc.Find("html").Attr("lang"); !ok || strings.TrimSpace(lang) == "" {
				return 1
			}
			return 0
		},
	},
	{
		id:          "link-name",
		impact:      "serious",
		description: "Links must have discernible text",
		help:        "Give every anchor visible text or an aria-label",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/link-name",
		count: func(doc *goquery.Document) int {
			n := 0
			doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
				if strings.TrimSpace(sel.Text()) != "" {
					return
				}
				if _, ok := sel.Attr("aria-label"); ok {
					return
				}
				if sel.Find("img[alt]").Length() > 0 {
					return
				}
				n++
			})
			return n
		},
	},
	{
		id:          "button-name",
		impact:      "serious",
		description: "Buttons must have discernible text",
		help:        "Give every button visible text or an aria-label",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/button-name",
		count: func(doc *goquery.Document) int {
			n := 0
			doc.Find("button").Each(func(i int, sel *goquery.Selection) {
				if strings.TrimSpace(sel.Text()) != "" {
					return
				}
				if _, ok := sel.Attr("aria-label"); ok {
					return
				}
				n++
			})
			return n
		},
	},
	{
		id:          "frame-title",
		impact:      "moderate",
		description: "Frames must have a title attribute",
		help:        "Add a title to every iframe",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/frame-title",
		count: func(doc *goquery.Document) int {
			n := 0
			doc.Find("iframe").Each(func(i int, sel *goquery.Selection) {
				if title, ok := sel.Attr("title"); !ok || strings.TrimSpace(title) == "" {
					n++
				}
			})
			return n
		},
	},
	{
		id:          "page-has-heading-one",
		impact:      "moderate",
		description: "Page should contain a level-one heading",
		help:        "Add an <h1> describing the page content",
		helpURL:     "https://dequeuniversity.com/rules/axe/4.8/page-has-heading-one",
		count: func(doc *goquery.Document) int {
			if doc.Find("h1").Length() == 0 {
				return 1
			}
			return 0
		},
	},
}

var impactPenalty = map[string]int{
	"critical": 15,
	"serious":  10,
	"moderate": 5,
	"minor":    2,
}

// CheckAccessibility runs the rule set against a parsed document and scores
// the result. Each violated rule costs its impact penalty once, regardless
// of node count; the score floors at 0.
func CheckAccessibility(doc *goquery.Document) AccessibilityReport {
	report := AccessibilityReport{Score: 100}

	for _, rule := range a11yRules {
		n := rule.count(doc)
		if n == 0 {
			continue
		}
		report.Violations = append(report.Violations, Violation{
			ID:          rule.id,
			Impact:      rule.impact,
			Description: rule.description,
			Help:        rule.help,
			HelpURL:     rule.helpURL,
			NodeCount:   n,
		})
		report.Score -= impactPenalty[rule.impact]
	}

	if report.Score < 0 {
		report.Score = 0
	}
	return report
}
