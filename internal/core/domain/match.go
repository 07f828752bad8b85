package domain

// MatchResult is one detection hit produced by the match engine.
//
// RawVersion is the capture group substring as matched; NormalizedVersion is
// its canonical dotted-numeric form. Either may be empty: a rule without a
// version group yields neither, and a raw version that fails normalization
// still carries the raw string as evidence. VersionRange is set only when the
// rule came from a versioned bucket.
type MatchResult struct {
	Vendor      string   `json:"vendor"`
	Product     string   `json:"product"`
	VendorID    string   `json:"vendor_id"`
	ProductID   string   `json:"product_id"`
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`

	PatternName       string  `json:"pattern_name"`
	MatchedText       string  `json:"matched_text"`
	RawVersion        string  `json:"version,omitempty"`
	NormalizedVersion string  `json:"normalized_version,omitempty"`
	VersionRange      string  `json:"version_range,omitempty"`
	Priority          int     `json:"priority"`
	Confidence        float64 `json:"confidence"`
}
