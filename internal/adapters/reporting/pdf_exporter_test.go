package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infopercept/rix/internal/core/domain"
)

func TestExportCorpusReport(t *testing.T) {
	exporter := NewPDFExporter()

	report := &domain.ReportData{
		GeneratedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		CorpusPath:  "/data/patterns",
		Stats: domain.ReportStats{
			TotalProducts:   12,
			TotalRules:      340,
			TotalVendors:    8,
			CompileFailures: 1,
			CategoryBreakdown: map[domain.Category]int{
				domain.CategoryWeb: 7,
				domain.CategoryCMS: 5,
			},
		},
		TopProducts: []domain.ProductStat{
			{Vendor: "Apache Software Foundation", Product: "HTTP Server", Rules: 120},
			{Vendor: "nginx", Product: "nginx", Rules: 85},
		},
		Issues: []domain.LoadIssue{
			{Location: "apache/httpd.json", Message: "invalid regex in all_versions[3]"},
		},
	}

	data, err := exporter.ExportCorpusReport(report)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// PDF files start with the %PDF magic bytes
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportCorpusReportEmpty(t *testing.T) {
	exporter := NewPDFExporter()

	data, err := exporter.ExportCorpusReport(&domain.ReportData{
		GeneratedAt: time.Now(),
		Stats:       domain.ReportStats{},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
