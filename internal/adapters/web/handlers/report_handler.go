package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/infopercept/rix/internal/adapters/reporting"
	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/match"
)

const topProductCount = 15

// ReportHandler generates downloadable corpus summary reports
type ReportHandler struct {
	Handle      *match.Handle
	PDFExporter *reporting.PDFExporter
	CorpusPath  string
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(handle *match.Handle, exporter *reporting.PDFExporter, corpusPath string) *ReportHandler {
	return &ReportHandler{
		Handle:      handle,
		PDFExporter: exporter,
		CorpusPath:  corpusPath,
	}
}

// HandleGenerateReport builds a PDF summary of the active corpus snapshot
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.buildReport()

	data, err := h.PDFExporter.ExportCorpusReport(report)
	if err != nil {
		log.Printf("Report generation failed: %v", err)
		http.Error(w, "Report generation failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("corpus-report-%s.pdf", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(data)
}

func (h *ReportHandler) buildReport() *domain.ReportData {
	engine := h.Handle.Get()
	stats := engine.Corpus().Stats()
	issues := engine.CompileIssues()

	products := make([]domain.ProductStat, 0, stats.Products)
	for _, e := range engine.Corpus().All() {
		products = append(products, domain.ProductStat{
			Vendor:  e.Vendor,
			Product: e.Product,
			Rules:   e.RuleCount(),
		})
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Rules > products[j].Rules
	})
	if len(products) > topProductCount {
		products = products[:topProductCount]
	}

	return &domain.ReportData{
		GeneratedAt: time.Now(),
		CorpusPath:  h.CorpusPath,
		Stats: domain.ReportStats{
			TotalProducts:     stats.Products,
			TotalRules:        stats.Rules,
			TotalVendors:      stats.Vendors,
			CompileFailures:   len(issues),
			CategoryBreakdown: stats.Categories,
		},
		TopProducts: products,
		Issues:      issues,
	}
}
