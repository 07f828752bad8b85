// Package corpusfile loads fingerprint corpora from trees of per-product
// JSON files.
package corpusfile

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/sirupsen/logrus"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/corpus"
	"github.com/infopercept/rix/internal/telemetry"
)

// Loader reads corpus records from disk. Loading tolerates individual bad
// records: thousands of independently authored files are expected to contain
// a handful of defects, and one of them must never abort the whole load.
type Loader struct {
	log *logrus.Logger
}

// NewLoader creates a loader. A nil logger falls back to the standard one.
func NewLoader(log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{log: log}
}

// LoadDir walks root for .json files (the by-vendor layout, but any tree
// works), builds a corpus from every accepted record and returns the issue
// list for the rest. The returned error is reserved for a fully unreadable
// root; per-record problems are issues, not errors.
func (l *Loader) LoadDir(root string) (*corpus.PatternCorpus, []domain.LoadIssue, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("corpus root unreadable: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	var entries []domain.ProductEntry
	var issues []domain.LoadIssue
	seen := make(map[domain.ProductKey]string)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			issues = append(issues, domain.LoadIssue{Location: path, Message: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			issues = append(issues, domain.LoadIssue{Location: path, Message: err.Error()})
			telemetry.CorpusIssues.WithLabelValues("unreadable").Inc()
			return nil
		}

		entry, recordIssues := l.LoadRecord(data, path)
		issues = append(issues, recordIssues...)
		if entry == nil {
			return nil
		}

		if prev, dup := seen[entry.Key()]; dup {
			issues = append(issues, domain.LoadIssue{
				Location: path,
				Message:  fmt.Sprintf("duplicate of %s/%s already loaded from %s", entry.VendorID, entry.ProductID, prev),
			})
			telemetry.CorpusIssues.WithLabelValues("duplicate").Inc()
			return nil
		}
		seen[entry.Key()] = path
		entries = append(entries, *entry)
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("corpus walk failed: %w", walkErr)
	}

	l.log.Infof("loaded %d product entries from %s (%d issues)", len(entries), root, len(issues))
	return corpus.New(entries), issues, nil
}

// productRecord is the on-disk JSON shape. Rule numeric fields are pointers
// so a missing field can be told apart from an explicit zero.
type productRecord struct {
	Vendor      string                  `json:"vendor"`
	VendorID    string                  `json:"vendor_id"`
	Product     string                  `json:"product"`
	ProductID   string                  `json:"product_id"`
	Category    string                  `json:"category"`
	Subcategory string                  `json:"subcategory"`
	AllVersions []ruleRecord            `json:"all_versions"`
	Versions    map[string][]ruleRecord `json:"versions"`
}

type ruleRecord struct {
	Name         string                  `json:"name"`
	Pattern      string                  `json:"pattern"`
	VersionGroup *int                    `json:"version_group"`
	Priority     *int                    `json:"priority"`
	Confidence   *float64                `json:"confidence"`
	Metadata     *domain.PatternMetadata `json:"metadata"`
}

// LoadRecord decodes and screens a single corpus document. A rejected record
// returns nil plus the issues explaining why; acceptance is all-or-nothing
// per record (one bad rule rejects the whole document, matching how the
// corpus lint tooling treats files).
func (l *Loader) LoadRecord(data []byte, location string) (*domain.ProductEntry, []domain.LoadIssue) {
	reject := func(reason, format string, args ...interface{}) (*domain.ProductEntry, []domain.LoadIssue) {
		telemetry.CorpusIssues.WithLabelValues(reason).Inc()
		return nil, []domain.LoadIssue{{Location: location, Message: fmt.Sprintf(format, args...)}}
	}

	var record productRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return reject("malformed_json", "invalid JSON: %v", err)
	}

	for _, field := range []struct{ name, value string }{
		{"vendor", record.Vendor},
		{"vendor_id", record.VendorID},
		{"product", record.Product},
		{"product_id", record.ProductID},
	} {
		if field.value == "" {
			return reject("missing_field", "missing required field %q", field.name)
		}
	}
	if !domain.Category(record.Category).IsValid() {
		return reject("bad_category", "invalid category %q, must be one of %v", record.Category, domain.Categories)
	}

	entry := &domain.ProductEntry{
		Vendor:      record.Vendor,
		VendorID:    record.VendorID,
		Product:     record.Product,
		ProductID:   record.ProductID,
		Category:    domain.Category(record.Category),
		Subcategory: record.Subcategory,
	}

	for i, rr := range record.AllVersions {
		rule, err := convertRule(rr)
		if err != nil {
			return reject("bad_rule", "all_versions[%d]: %v", i, err)
		}
		entry.GenericPatterns = append(entry.GenericPatterns, rule)
	}
	for label, rules := range record.Versions {
		for i, rr := range rules {
			rule, err := convertRule(rr)
			if err != nil {
				return reject("bad_rule", "versions[%s][%d]: %v", label, i, err)
			}
			if entry.VersionedPatterns == nil {
				entry.VersionedPatterns = make(map[string][]domain.PatternRule)
			}
			entry.VersionedPatterns[label] = append(entry.VersionedPatterns[label], rule)
		}
	}

	return entry, nil
}

// convertRule screens one rule record against the loader invariants: required
// fields present, priority and confidence in range, pattern compiles.
func convertRule(rr ruleRecord) (domain.PatternRule, error) {
	var zero domain.PatternRule

	if rr.Name == "" {
		return zero, fmt.Errorf("missing required field %q", "name")
	}
	if rr.Pattern == "" {
		return zero, fmt.Errorf("missing required field %q", "pattern")
	}
	if rr.Priority == nil {
		return zero, fmt.Errorf("missing required field %q", "priority")
	}
	if rr.Confidence == nil {
		return zero, fmt.Errorf("missing required field %q", "confidence")
	}
	if *rr.Priority < 0 || *rr.Priority > 200 {
		return zero, fmt.Errorf("priority %d outside [0,200]", *rr.Priority)
	}
	if *rr.Confidence < 0.0 || *rr.Confidence > 1.0 {
		return zero, fmt.Errorf("confidence %g outside [0.0,1.0]", *rr.Confidence)
	}
	if _, err := regexp2.Compile(rr.Pattern, regexp2.None); err != nil {
		return zero, fmt.Errorf("pattern does not compile: %v", err)
	}

	versionGroup := 0
	if rr.VersionGroup != nil {
		if *rr.VersionGroup < 0 {
			return zero, fmt.Errorf("version_group %d is negative", *rr.VersionGroup)
		}
		versionGroup = *rr.VersionGroup
	}

	return domain.PatternRule{
		Name:         rr.Name,
		Pattern:      rr.Pattern,
		VersionGroup: versionGroup,
		Priority:     *rr.Priority,
		Confidence:   *rr.Confidence,
		Metadata:     rr.Metadata,
	}, nil
}
