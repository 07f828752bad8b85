package corpus

import (
	"fmt"
	"sort"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/version"
)

// Timeout applied when replaying metadata test cases, so one pathological
// fixture cannot stall a corpus lint run.
const testCaseTimeout = 2 * time.Second

var metadataDateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ValidateEntry checks a single product entry against every structural and
// semantic invariant and returns the full list of defects. It never stops at
// the first problem; authoring tools want all of them at once. An empty list
// means the entry is publishable.
func ValidateEntry(entry *domain.ProductEntry) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	add := func(field, format string, args ...interface{}) {
		issues = append(issues, domain.ValidationIssue{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if entry.Vendor == "" {
		add("vendor", "missing required field")
	}
	if entry.Product == "" {
		add("product", "missing required field")
	}
	if !domain.IsValidSlug(entry.VendorID) {
		add("vendor_id", "must be a non-empty lowercase slug, got %q", entry.VendorID)
	}
	if !domain.IsValidSlug(entry.ProductID) {
		add("product_id", "must be a non-empty lowercase slug, got %q", entry.ProductID)
	}
	if !entry.Category.IsValid() {
		add("category", "invalid category %q, must be one of %v", entry.Category, domain.Categories)
	}

	for i := range entry.GenericPatterns {
		field := fmt.Sprintf("all_versions[%d]", i)
		issues = append(issues, validateRule(&entry.GenericPatterns[i], field)...)
	}

	// Iterate versioned buckets in sorted label order so issue output is
	// stable.
	labels := make([]string, 0, len(entry.VersionedPatterns))
	for label := range entry.VersionedPatterns {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		rules := entry.VersionedPatterns[label]
		for i := range rules {
			field := fmt.Sprintf("versions[%s][%d]", label, i)
			issues = append(issues, validateRule(&rules[i], field)...)
		}
	}

	return issues
}

func validateRule(rule *domain.PatternRule, field string) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	add := func(sub, format string, args ...interface{}) {
		issues = append(issues, domain.ValidationIssue{
			Field:   field + "." + sub,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if rule.Name == "" {
		add("name", "missing required field")
	}
	if rule.Priority < 0 || rule.Priority > 200 {
		add("priority", "must be between 0 and 200, got %d", rule.Priority)
	}
	if rule.Confidence < 0.0 || rule.Confidence > 1.0 {
		add("confidence", "must be between 0.0 and 1.0, got %g", rule.Confidence)
	}
	if rule.VersionGroup < 0 {
		add("version_group", "must not be negative, got %d", rule.VersionGroup)
	}

	var re *regexp2.Regexp
	if rule.Pattern == "" {
		add("pattern", "missing required field")
	} else {
		var err error
		re, err = regexp2.Compile(rule.Pattern, regexp2.None)
		if err != nil {
			add("pattern", "does not compile: %v", err)
		}
	}

	// Capture group count can only be checked against a compiled pattern.
	if re != nil && rule.VersionGroup > 0 {
		if rule.VersionGroup > maxGroupNumber(re) {
			add("version_group", "group %d exceeds the pattern's %d capture group(s)",
				rule.VersionGroup, maxGroupNumber(re))
		}
	}

	if rule.Metadata != nil {
		issues = append(issues, validateMetadata(rule.Metadata, field+".metadata")...)
	}
	if re != nil && rule.Metadata != nil {
		issues = append(issues, replayTestCases(rule, re, field+".metadata")...)
	}

	return issues
}

func validateMetadata(md *domain.PatternMetadata, field string) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	add := func(sub, format string, args ...interface{}) {
		issues = append(issues, domain.ValidationIssue{
			Field:   field + "." + sub,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if md.CreatedAt != "" && !parsesAsDate(md.CreatedAt) {
		add("created_at", "not a calendar date: %q", md.CreatedAt)
	}
	if md.UpdatedAt != "" && !parsesAsDate(md.UpdatedAt) {
		add("updated_at", "not a calendar date: %q", md.UpdatedAt)
	}
	if md.Severity != "" && !domain.IsValidSeverity(md.Severity) {
		add("severity", "must be one of %v, got %q", domain.Severities, md.Severity)
	}
	if md.CVSSScore != nil && (*md.CVSSScore < 0.0 || *md.CVSSScore > 10.0) {
		add("cvss_score", "must be between 0.0 and 10.0, got %g", *md.CVSSScore)
	}
	return issues
}

// replayTestCases runs each metadata test case through the rule's own
// pattern. An expected version of "unknown" passes regardless of outcome;
// otherwise the captured version must normalize to the same value as the
// expectation.
func replayTestCases(rule *domain.PatternRule, re *regexp2.Regexp, field string) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	re.MatchTimeout = testCaseTimeout

	for i, tc := range rule.Metadata.TestCases {
		sub := fmt.Sprintf("%s.test_cases[%d]", field, i)
		if tc.ExpectedVersion == "unknown" {
			continue
		}

		m, err := re.FindStringMatch(tc.Input)
		if err != nil {
			issues = append(issues, domain.ValidationIssue{
				Field:   sub,
				Message: fmt.Sprintf("pattern failed on input %q: %v", tc.Input, err),
			})
			continue
		}
		if m == nil {
			issues = append(issues, domain.ValidationIssue{
				Field:   sub,
				Message: fmt.Sprintf("pattern does not match input %q", tc.Input),
			})
			continue
		}

		var raw string
		if rule.VersionGroup > 0 && rule.VersionGroup < m.GroupCount() {
			if g := m.GroupByNumber(rule.VersionGroup); g != nil && len(g.Captures) > 0 {
				raw = g.String()
			}
		}

		gotNorm, _ := version.Normalize(raw)
		wantNorm, _ := version.Normalize(tc.ExpectedVersion)
		if gotNorm != wantNorm {
			issues = append(issues, domain.ValidationIssue{
				Field: sub,
				Message: fmt.Sprintf("expected version %q, pattern extracted %q from %q",
					tc.ExpectedVersion, raw, tc.Input),
			})
		}
	}
	return issues
}

// maxGroupNumber returns the highest capture group index the pattern defines.
func maxGroupNumber(re *regexp2.Regexp) int {
	max := 0
	for _, n := range re.GetGroupNumbers() {
		if n > max {
			max = n
		}
	}
	return max
}

func parsesAsDate(s string) bool {
	for _, layout := range metadataDateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
