package renderer

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/auditlens/seo-audit/internal/keywords"
)

const (
	sheetKeywords = "Keyword Rankings"
	sheetPages    = "Top Pages"
	sheetOverview = "Domain Overview"
)

// RenderKeywordWorkbook renders the keyword dataset into a three-sheet
// spreadsheet: ranked keywords with color-coded position bands, top pages
// by traffic, and a domain overview.
func RenderKeywordWorkbook(domain string, data *keywords.DomainData, clientName string, date time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetKeywords); err != nil {
		return nil, fmt.Errorf("failed to name keyword sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetPages); err != nil {
		return nil, fmt.Errorf("failed to create pages sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetOverview); err != nil {
		return nil, fmt.Errorf("failed to create overview sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// Position bands: top 3 green, first page amber, beyond red.
	greenStyle, err := bandStyle(f, "C6EFCE")
	if err != nil {
		return nil, err
	}
	amberStyle, err := bandStyle(f, "FFEB9C")
	if err != nil {
		return nil, err
	}
	redStyle, err := bandStyle(f, "FFC7CE")
	if err != nil {
		return nil, err
	}

	if err := writeKeywordSheet(f, data, headerStyle, greenStyle, amberStyle, redStyle); err != nil {
		return nil, err
	}
	if err := writePagesSheet(f, data, headerStyle); err != nil {
		return nil, err
	}
	if err := writeOverviewSheet(f, domain, data, clientName, date, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func bandStyle(f *excelize.File, color string) (int, error) {
	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create band style: %w", err)
	}
	return id, nil
}

func writeKeywordSheet(f *excelize.File, data *keywords.DomainData, headerStyle, green, amber, red int) error {
	headers := []string{"Keyword", "Position", "Search Volume", "Difficulty", "Ranking URL"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheetKeywords, cell, h); err != nil {
			return fmt.Errorf("failed to write keyword header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetKeywords, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("failed to style keyword header: %w", err)
	}

	sorted := make([]keywords.Keyword, len(data.Keywords))
	copy(sorted, data.Keywords)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	for i, k := range sorted {
		row := i + 2
		f.SetCellValue(sheetKeywords, fmt.Sprintf("A%d", row), k.Keyword)
		f.SetCellValue(sheetKeywords, fmt.Sprintf("B%d", row), k.Position)
		f.SetCellValue(sheetKeywords, fmt.Sprintf("C%d", row), k.Volume)
		f.SetCellValue(sheetKeywords, fmt.Sprintf("D%d", row), k.Difficulty)
		f.SetCellValue(sheetKeywords, fmt.Sprintf("E%d", row), k.URL)

		band := red
		switch {
		case k.Position <= 3:
			band = green
		case k.Position <= 10:
			band = amber
		}
		if err := f.SetCellStyle(sheetKeywords, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), band); err != nil {
			return fmt.Errorf("failed to style keyword row: %w", err)
		}
	}

	return f.SetColWidth(sheetKeywords, "A", "A", 36)
}

func writePagesSheet(f *excelize.File, data *keywords.DomainData, headerStyle int) error {
	headers := []string{"Page URL", "Est. Traffic", "Keywords", "Avg. Position"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheetPages, cell, h); err != nil {
			return fmt.Errorf("failed to write pages header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetPages, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to style pages header: %w", err)
	}

	sorted := make([]keywords.TopPage, len(data.TopPages))
	copy(sorted, data.TopPages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Traffic > sorted[j].Traffic })

	for i, p := range sorted {
		row := i + 2
		f.SetCellValue(sheetPages, fmt.Sprintf("A%d", row), p.URL)
		f.SetCellValue(sheetPages, fmt.Sprintf("B%d", row), p.Traffic)
		f.SetCellValue(sheetPages, fmt.Sprintf("C%d", row), p.Keywords)
		f.SetCellValue(sheetPages, fmt.Sprintf("D%d", row), p.Position)
	}

	return f.SetColWidth(sheetPages, "A", "A", 48)
}

func writeOverviewSheet(f *excelize.File, domain string, data *keywords.DomainData, clientName string, date time.Time, headerStyle int) error {
	rows := [][2]interface{}{
		{"Domain", domain},
		{"Client", clientName},
		{"Report Date", date.Format("2006-01-02")},
		{"Total Keywords", data.TotalKeywords},
		{"Organic Traffic (est.)", data.OrganicTraffic},
		{"Paid Traffic (est.)", data.PaidTraffic},
		{"Backlinks", data.Backlinks},
	}
	if data.Placeholder {
		rows = append(rows, [2]interface{}{"Data Source", "placeholder (keyword API unavailable)"})
	}

	for i, pair := range rows {
		row := i + 1
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", row), pair[0])
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", row), pair[1])
	}
	if err := f.SetCellStyle(sheetOverview, "A1", fmt.Sprintf("A%d", len(rows)), headerStyle); err != nil {
		return fmt.Errorf("failed to style overview labels: %w", err)
	}

	return f.SetColWidth(sheetOverview, "A", "B", 28)
}
