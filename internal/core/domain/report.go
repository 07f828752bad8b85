package domain

import "time"

// ReportData aggregates all data needed for the corpus summary report.
type ReportData struct {
	GeneratedAt time.Time
	CorpusPath  string
	Stats       ReportStats
	TopProducts []ProductStat
	Issues      []LoadIssue
}

// ReportStats holds summary statistics.
type ReportStats struct {
	TotalProducts   int
	TotalRules      int
	TotalVendors    int
	CompileFailures int

	// Per-category product counts
	CategoryBreakdown map[Category]int
}

// ProductStat ranks a product by its rule count.
type ProductStat struct {
	Vendor  string
	Product string
	Rules   int
}
