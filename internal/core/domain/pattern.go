package domain

// Category classifies a product entry. The set is closed; loaders reject
// anything outside it.
type Category string

const (
	CategoryWeb        Category = "web"
	CategoryCMS        Category = "cms"
	CategoryDatabase   Category = "database"
	CategoryFramework  Category = "framework"
	CategoryMessaging  Category = "messaging"
	CategoryNetworking Category = "networking"
	CategoryOS         Category = "os"
)

// Categories lists every valid category value.
var Categories = []Category{
	CategoryWeb,
	CategoryCMS,
	CategoryDatabase,
	CategoryFramework,
	CategoryMessaging,
	CategoryNetworking,
	CategoryOS,
}

// IsValid reports whether c is one of the enumerated categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// TestCase is a self-documented regression fixture attached to a rule.
// ExpectedVersion "unknown" means the fixture passes regardless of outcome.
type TestCase struct {
	Input           string `json:"input"`
	ExpectedVersion string `json:"expected_version"`
}

// Reference is a link to an advisory, changelog or documentation page.
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PatternMetadata is the informational bag attached to a rule. It is never
// consulted during matching; validators check the optional fields when
// present.
type PatternMetadata struct {
	Author           string      `json:"author,omitempty"`
	CreatedAt        string      `json:"created_at,omitempty"`
	UpdatedAt        string      `json:"updated_at,omitempty"`
	Description      string      `json:"description,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	TestCases        []TestCase  `json:"test_cases,omitempty"`
	References       []Reference `json:"references,omitempty"`
	Severity         string      `json:"severity,omitempty"`
	CVSSScore        *float64    `json:"cvss_score,omitempty"`
	CWEIDs           []string    `json:"cwe_ids,omitempty"`
	AffectedVersions string      `json:"affected_versions,omitempty"`
	Remediation      string      `json:"remediation,omitempty"`
	Source           string      `json:"source,omitempty"`
	License          string      `json:"license,omitempty"`
}

// PatternRule is one regex-based detection rule.
//
// VersionGroup is the 1-based capture group holding the raw version
// substring; 0 means the rule carries no version information. Priority is in
// [0,200], higher wins tie-breaks. Confidence is in [0.0,1.0].
type PatternRule struct {
	Name         string           `json:"name"`
	Pattern      string           `json:"pattern"`
	VersionGroup int              `json:"version_group"`
	Priority     int              `json:"priority"`
	Confidence   float64          `json:"confidence"`
	Metadata     *PatternMetadata `json:"metadata,omitempty"`
}

// ProductEntry is one vendor+product fingerprint record. (VendorID,
// ProductID) is the unique key within a corpus.
type ProductEntry struct {
	Vendor      string   `json:"vendor"`
	VendorID    string   `json:"vendor_id"`
	Product     string   `json:"product"`
	ProductID   string   `json:"product_id"`
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`

	// GenericPatterns apply regardless of version (the "all_versions"
	// bucket). VersionedPatterns are keyed by an opaque range label such as
	// "2.x".
	GenericPatterns   []PatternRule            `json:"all_versions,omitempty"`
	VersionedPatterns map[string][]PatternRule `json:"versions,omitempty"`
}

// Key returns the unique corpus key for this entry.
func (e *ProductEntry) Key() ProductKey {
	return ProductKey{VendorID: e.VendorID, ProductID: e.ProductID}
}

// RuleCount returns the total number of rules across all buckets.
func (e *ProductEntry) RuleCount() int {
	n := len(e.GenericPatterns)
	for _, rules := range e.VersionedPatterns {
		n += len(rules)
	}
	return n
}

// ProductKey identifies a ProductEntry within a corpus.
type ProductKey struct {
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
}
