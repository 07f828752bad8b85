// Package match implements the detection core: compiled fingerprint rules
// evaluated against arbitrary text.
package match

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/sirupsen/logrus"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/ports"
	"github.com/infopercept/rix/internal/core/services/corpus"
	"github.com/infopercept/rix/internal/core/services/version"
	"github.com/infopercept/rix/internal/telemetry"
)

// DefaultRuleTimeout bounds a single rule's evaluation time. Patterns are
// independently authored; a backtracking blowup in one of them must not stall
// a whole match call.
const DefaultRuleTimeout = 500 * time.Millisecond

// CompiledRule pairs a pattern rule with its compiled regex and the identity
// of the owning product entry. Rules are compiled once at engine construction
// and never mutated afterwards.
type CompiledRule struct {
	Entry        *domain.ProductEntry
	Rule         domain.PatternRule
	VersionRange string // set when the rule came from a versioned bucket
	re           *regexp2.Regexp
}

// Options tunes engine construction. The zero value is usable.
type Options struct {
	// RuleTimeout bounds each rule's regex evaluation. Zero means
	// DefaultRuleTimeout.
	RuleTimeout time.Duration
	// Logger receives compile and evaluation warnings. Nil means the
	// standard logrus logger.
	Logger *logrus.Logger
}

// Engine evaluates a text blob against every compiled rule of a corpus
// snapshot. It holds no mutable state after construction and is safe for
// concurrent use; hot reload means building a new Engine over a new corpus
// and swapping the reference (see Handle).
type Engine struct {
	corpus        *corpus.PatternCorpus
	rules         []CompiledRule
	byProduct     map[domain.ProductKey][]int
	compileIssues []domain.LoadIssue
	log           *logrus.Logger
}

// NewEngine eagerly compiles every rule of the corpus, spanning generic
// patterns and every versioned bucket. Rules whose regex fails to compile are
// dropped with a warning; the loader should have screened these already, but
// an engine must never crash on a corpus it did not validate itself.
func NewEngine(c *corpus.PatternCorpus, opts Options) *Engine {
	if opts.RuleTimeout <= 0 {
		opts.RuleTimeout = DefaultRuleTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	e := &Engine{
		corpus:    c,
		byProduct: make(map[domain.ProductKey][]int),
		log:       opts.Logger,
	}

	for _, entry := range c.All() {
		for i := range entry.GenericPatterns {
			e.compile(entry, &entry.GenericPatterns[i], "", opts.RuleTimeout)
		}
		// Versioned buckets in sorted label order: map iteration is not
		// deterministic and result ordering for ties is contractual.
		labels := make([]string, 0, len(entry.VersionedPatterns))
		for label := range entry.VersionedPatterns {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			rules := entry.VersionedPatterns[label]
			for i := range rules {
				e.compile(entry, &rules[i], label, opts.RuleTimeout)
			}
		}
	}

	return e
}

func (e *Engine) compile(entry *domain.ProductEntry, rule *domain.PatternRule, label string, timeout time.Duration) {
	re, err := regexp2.Compile(rule.Pattern, regexp2.None)
	if err != nil {
		location := fmt.Sprintf("%s/%s: rule %q", entry.VendorID, entry.ProductID, rule.Name)
		e.compileIssues = append(e.compileIssues, domain.LoadIssue{
			Location: location,
			Message:  fmt.Sprintf("regex does not compile: %v", err),
		})
		e.log.WithFields(logrus.Fields{
			"vendor_id":  entry.VendorID,
			"product_id": entry.ProductID,
			"rule":       rule.Name,
		}).Warnf("dropping rule: regex does not compile: %v", err)
		telemetry.RuleCompileFailures.Inc()
		return
	}
	re.MatchTimeout = timeout

	e.byProduct[entry.Key()] = append(e.byProduct[entry.Key()], len(e.rules))
	e.rules = append(e.rules, CompiledRule{
		Entry:        entry,
		Rule:         *rule,
		VersionRange: label,
		re:           re,
	})
	telemetry.RulesCompiled.Inc()
}

// RuleCount returns the number of successfully compiled rules.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// Corpus returns the corpus snapshot this engine was compiled from.
func (e *Engine) Corpus() *corpus.PatternCorpus {
	return e.corpus
}

var _ ports.Matcher = (*Engine)(nil)

// CompileIssues returns the rules dropped at construction time.
func (e *Engine) CompileIssues() []domain.LoadIssue {
	return e.compileIssues
}

// Match evaluates text against every compiled rule and returns all hits,
// sorted by priority descending, confidence descending, then corpus rule
// order (stable). The first result is always the most authoritative
// identification.
//
// Match performs no deduplication: several rules hitting the same product
// each produce a result. Callers wanting one verdict per product must
// post-process, e.g. with BestPerProduct.
//
// When ctx is cancelled or its deadline passes mid-evaluation, the partial
// result set accumulated so far is returned rather than an error; a
// pathological input never denies the caller everything.
func (e *Engine) Match(ctx context.Context, text string) []domain.MatchResult {
	start := time.Now()
	telemetry.MatchRequests.Inc()

	var results []domain.MatchResult
	for i := range e.rules {
		if ctx.Err() != nil {
			e.log.Warnf("match deadline exceeded after %d/%d rules, returning partial results",
				i, len(e.rules))
			break
		}
		if r, ok := e.evalRule(&e.rules[i], text); ok {
			results = append(results, r)
		}
	}

	sortResults(results)
	telemetry.MatchDuration.Observe(time.Since(start).Seconds())
	telemetry.MatchHits.Add(float64(len(results)))
	return results
}

// MatchProduct evaluates text against only the rules owned by one product
// entry. Result ordering follows the same contract as Match.
func (e *Engine) MatchProduct(ctx context.Context, text, vendorID, productID string) []domain.MatchResult {
	key := domain.ProductKey{VendorID: vendorID, ProductID: productID}

	var results []domain.MatchResult
	for _, idx := range e.byProduct[key] {
		if ctx.Err() != nil {
			break
		}
		if r, ok := e.evalRule(&e.rules[idx], text); ok {
			results = append(results, r)
		}
	}
	sortResults(results)
	return results
}

// evalRule searches text with one compiled rule. A runtime regex failure
// (timeout included) skips the rule for this call only.
func (e *Engine) evalRule(cr *CompiledRule, text string) (domain.MatchResult, bool) {
	m, err := cr.re.FindStringMatch(text)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"vendor_id":  cr.Entry.VendorID,
			"product_id": cr.Entry.ProductID,
			"rule":       cr.Rule.Name,
		}).Warnf("rule evaluation failed, skipping for this call: %v", err)
		telemetry.RuleEvalFailures.Inc()
		return domain.MatchResult{}, false
	}
	if m == nil {
		return domain.MatchResult{}, false
	}

	var raw string
	if cr.Rule.VersionGroup > 0 && cr.Rule.VersionGroup < m.GroupCount() {
		if g := m.GroupByNumber(cr.Rule.VersionGroup); g != nil && len(g.Captures) > 0 {
			raw = g.String()
		}
	}

	// A failed normalization is normal: the match still stands as evidence,
	// only the canonical version is absent.
	normalized, _ := version.Normalize(raw)

	return domain.MatchResult{
		Vendor:            cr.Entry.Vendor,
		Product:           cr.Entry.Product,
		VendorID:          cr.Entry.VendorID,
		ProductID:         cr.Entry.ProductID,
		Category:          cr.Entry.Category,
		Subcategory:       cr.Entry.Subcategory,
		PatternName:       cr.Rule.Name,
		MatchedText:       m.String(),
		RawVersion:        raw,
		NormalizedVersion: normalized,
		VersionRange:      cr.VersionRange,
		Priority:          cr.Rule.Priority,
		Confidence:        cr.Rule.Confidence,
	}, true
}

func sortResults(results []domain.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority != results[j].Priority {
			return results[i].Priority > results[j].Priority
		}
		return results[i].Confidence > results[j].Confidence
	})
}

// BestPerProduct reduces a sorted result list to the highest-ranked result
// for each (vendor_id, product_id) pair, preserving order. This is the
// explicit post-processing step for callers wanting one verdict per product;
// Match itself never deduplicates.
func BestPerProduct(results []domain.MatchResult) []domain.MatchResult {
	seen := make(map[domain.ProductKey]bool)
	var out []domain.MatchResult
	for _, r := range results {
		key := domain.ProductKey{VendorID: r.VendorID, ProductID: r.ProductID}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
