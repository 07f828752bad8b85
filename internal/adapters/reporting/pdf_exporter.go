// Package reporting renders corpus summary reports.
package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/infopercept/rix/internal/core/domain"
)

// PDFExporter exports corpus reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportCorpusReport generates a PDF summary of a loaded corpus: totals,
// category breakdown, the largest products and any load issues.
func (e *PDFExporter) ExportCorpusReport(report *domain.ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addStatistics(pdf, report)
	e.addTopProducts(pdf, report)
	e.addIssues(pdf, report)

	// Output to bytes
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Fingerprint Corpus Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	dateStr := fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, dateStr, "", 1, "L", false, 0, "")
	if report.CorpusPath != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Corpus: %s", report.CorpusPath), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

// addStatistics adds corpus totals and the category breakdown
func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Corpus Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Products", fmt.Sprintf("%d", report.Stats.TotalProducts), []int{0, 102, 204}},
		{"Rules", fmt.Sprintf("%d", report.Stats.TotalRules), []int{0, 102, 204}},
		{"Vendors", fmt.Sprintf("%d", report.Stats.TotalVendors), []int{0, 102, 204}},
		{"Compile Failures", fmt.Sprintf("%d", report.Stats.CompileFailures), []int{220, 53, 69}},
	}

	// Display in 2 columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(6)

	for _, category := range domain.Categories {
		count := report.Stats.CategoryBreakdown[category]
		if count == 0 {
			continue
		}
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 6, string(category)+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(35, 6, fmt.Sprintf("%d", count), "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}

// addTopProducts adds the largest products table
func (e *PDFExporter) addTopProducts(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Largest Products", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.TopProducts) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No products loaded", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	// Table header
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(60, 8, "Vendor", "1", 0, "L", true, 0, "")
	pdf.CellFormat(80, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Rules", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, p := range report.TopProducts {
		pdf.CellFormat(60, 7, p.Vendor, "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, p.Product, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", p.Rules), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}

// addIssues lists records skipped during loading
func (e *PDFExporter) addIssues(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Load Issues", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.Issues) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(52, 199, 89)
		pdf.CellFormat(0, 7, "No issues - every record loaded cleanly", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(220, 53, 69)
	for _, issue := range report.Issues {
		pdf.MultiCell(0, 5, issue.String(), "", "L", false)
	}
}
