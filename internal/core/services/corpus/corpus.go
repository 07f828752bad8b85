// Package corpus holds the in-memory fingerprint corpus and its validator.
package corpus

import (
	"sort"

	"github.com/infopercept/rix/internal/core/domain"
)

// PatternCorpus is an immutable snapshot of every loaded product entry,
// keyed by (vendor_id, product_id). It is built once per load and safe for
// unlimited concurrent readers; callers wanting updates build a new corpus
// and swap the reference, they never mutate one in place.
type PatternCorpus struct {
	entries []*domain.ProductEntry
	byKey   map[domain.ProductKey]*domain.ProductEntry
}

// New builds a corpus from accepted entries, preserving their order. When two
// entries share a key the first one wins; later duplicates are dropped
// (loaders are expected to have reported them already).
func New(entries []domain.ProductEntry) *PatternCorpus {
	c := &PatternCorpus{
		byKey: make(map[domain.ProductKey]*domain.ProductEntry, len(entries)),
	}
	for i := range entries {
		e := entries[i]
		if _, exists := c.byKey[e.Key()]; exists {
			continue
		}
		c.entries = append(c.entries, &e)
		c.byKey[e.Key()] = &e
	}
	return c
}

// Get returns the entry for a vendor/product pair, or nil when absent.
func (c *PatternCorpus) Get(vendorID, productID string) *domain.ProductEntry {
	return c.byKey[domain.ProductKey{VendorID: vendorID, ProductID: productID}]
}

// All returns every entry in load order.
func (c *PatternCorpus) All() []*domain.ProductEntry {
	return c.entries
}

// Len returns the number of entries.
func (c *PatternCorpus) Len() int {
	return len(c.entries)
}

// Filter returns the entries matching the given category and/or vendor ID.
// Zero values mean "any".
func (c *PatternCorpus) Filter(category domain.Category, vendorID string) []*domain.ProductEntry {
	var out []*domain.ProductEntry
	for _, e := range c.entries {
		if category != "" && e.Category != category {
			continue
		}
		if vendorID != "" && e.VendorID != vendorID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Vendors returns the sorted set of vendor IDs present in the corpus.
func (c *PatternCorpus) Vendors() []string {
	seen := make(map[string]bool)
	var vendors []string
	for _, e := range c.entries {
		if !seen[e.VendorID] {
			seen[e.VendorID] = true
			vendors = append(vendors, e.VendorID)
		}
	}
	sort.Strings(vendors)
	return vendors
}

// Stats summarizes the corpus for reporting and the stats API.
type Stats struct {
	Products   int                     `json:"products"`
	Rules      int                     `json:"rules"`
	Vendors    int                     `json:"vendors"`
	Categories map[domain.Category]int `json:"categories"`
}

// Stats counts products, rules and per-category totals.
func (c *PatternCorpus) Stats() Stats {
	s := Stats{Categories: make(map[domain.Category]int)}
	vendors := make(map[string]bool)
	for _, e := range c.entries {
		s.Products++
		s.Rules += e.RuleCount()
		s.Categories[e.Category]++
		vendors[e.VendorID] = true
	}
	s.Vendors = len(vendors)
	return s
}
