package renderer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/auditlens/seo-audit/internal/keywords"
)

func workbookData() *keywords.DomainData {
	return &keywords.DomainData{
		Domain:         "example.com",
		TotalKeywords:  320,
		OrganicTraffic: 4100,
		Keywords: []keywords.Keyword{
			{Keyword: "widgets guide", Position: 12, Volume: 400, URL: "https://example.com/guide"},
			{Keyword: "widgets", Position: 2, Volume: 900, URL: "https://example.com/widgets"},
			{Keyword: "widget pricing", Position: 7, Volume: 600, URL: "https://example.com/pricing"},
		},
		TopPages: []keywords.TopPage{
			{URL: "https://example.com/pricing", Traffic: 300, Keywords: 20, Position: 7},
			{URL: "https://example.com/widgets", Traffic: 1200, Keywords: 40, Position: 4},
		},
	}
}

func TestRenderKeywordWorkbook(t *testing.T) {
	data, err := RenderKeywordWorkbook("example.com", workbookData(), "Acme Co", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Keyword Rankings", "Top Pages", "Domain Overview"}, f.GetSheetList())

	// Keywords sorted by position ascending.
	first, err := f.GetCellValue("Keyword Rankings", "A2")
	require.NoError(t, err)
	assert.Equal(t, "widgets", first)
	last, err := f.GetCellValue("Keyword Rankings", "A4")
	require.NoError(t, err)
	assert.Equal(t, "widgets guide", last)

	// Pages sorted by traffic descending.
	topPage, err := f.GetCellValue("Top Pages", "A2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/widgets", topPage)

	client, err := f.GetCellValue("Domain Overview", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", client)
}

func TestRenderKeywordWorkbookPlaceholderNote(t *testing.T) {
	data := workbookData()
	data.Placeholder = true

	raw, err := RenderKeywordWorkbook("example.com", data, "Acme Co", time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	label, err := f.GetCellValue("Domain Overview", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Data Source", label)
}
