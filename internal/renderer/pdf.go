package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/auditlens/seo-audit/internal/db"
)

// RenderReportPDF renders a report and its ordered audits into a paginated
// printable document.
func RenderReportPDF(report *db.Report, audits []db.Audit) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(report.Name, true)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, report.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Website Audit Report — %s", time.Now().Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for i, audit := range audits {
		if i > 0 {
			pdf.AddPage()
		}
		writeAuditSection(pdf, i+1, &audit)
	}

	if len(audits) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 10, "This report contains no audits yet.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAuditSection(pdf *fpdf.Fpdf, index int, audit *db.Audit) {
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 10, fmt.Sprintf("%d. %s", index, audit.URL), "", 1, "L", false, 0, "")

	if audit.ClientName != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, "Client: "+audit.ClientName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 8, "Score", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Value", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	writeScoreRow(pdf, "SEO", audit.SeoScore, 100)
	writeScoreRow(pdf, "Accessibility", audit.AccessibilityScore, 100)
	writeScoreRow(pdf, "Design", audit.DesignScore, 10)
	pdf.Ln(4)

	if audit.MetaTitle != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Page Title", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, audit.MetaTitle, "", "L", false)
		pdf.Ln(2)
	}

	if audit.ClaudeAnalysis != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Analysis", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, audit.ClaudeAnalysis, "", "L", false)
	}
}

func writeScoreRow(pdf *fpdf.Fpdf, label string, value *int, max int) {
	display := "pending"
	if value != nil {
		display = fmt.Sprintf("%d / %d", *value, max)
	}
	pdf.CellFormat(60, 8, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, display, "1", 1, "L", false, 0, "")
}
