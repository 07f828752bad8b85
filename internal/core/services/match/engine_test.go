package match

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/corpus"
)

const apacheBanner = "HTTP/1.1 200 OK\r\nServer: Apache/2.4.41 (Ubuntu)\r\nContent-Type: text/html\r\n"

func webServerCorpus() *corpus.PatternCorpus {
	return corpus.New([]domain.ProductEntry{
		{
			Vendor:    "Apache Software Foundation",
			VendorID:  "apache",
			Product:   "HTTP Server",
			ProductID: "httpd",
			Category:  domain.CategoryWeb,
			GenericPatterns: []domain.PatternRule{
				{Name: "server_header", Pattern: `Server: Apache/([0-9.]+)`, VersionGroup: 1, Priority: 150, Confidence: 0.9},
				{Name: "server_token", Pattern: `Apache`, Priority: 50, Confidence: 0.4},
			},
			VersionedPatterns: map[string][]domain.PatternRule{
				"2.4.x": {
					{Name: "v24_banner", Pattern: `Apache/2\.4\.([0-9]+)`, VersionGroup: 1, Priority: 140, Confidence: 0.85},
				},
			},
		},
		{
			Vendor:    "nginx",
			VendorID:  "nginx",
			Product:   "nginx",
			ProductID: "nginx",
			Category:  domain.CategoryWeb,
			GenericPatterns: []domain.PatternRule{
				{Name: "server_header", Pattern: `Server: nginx/([0-9.]+)`, VersionGroup: 1, Priority: 150, Confidence: 0.9},
			},
		},
	})
}

func TestMatchApacheBanner(t *testing.T) {
	engine := NewEngine(webServerCorpus(), Options{})
	require.Equal(t, 4, engine.RuleCount())

	results := engine.Match(context.Background(), apacheBanner)
	require.Len(t, results, 3)

	// Highest priority rule first
	top := results[0]
	assert.Equal(t, "apache", top.VendorID)
	assert.Equal(t, "httpd", top.ProductID)
	assert.Equal(t, "server_header", top.PatternName)
	assert.Equal(t, "Server: Apache/2.4.41", top.MatchedText)
	assert.Equal(t, "2.4.41", top.RawVersion)
	assert.Equal(t, "2.4.41", top.NormalizedVersion)
	assert.Equal(t, 150, top.Priority)

	// Versioned bucket rule carries its range label
	assert.Equal(t, "v24_banner", results[1].PatternName)
	assert.Equal(t, "2.4.x", results[1].VersionRange)
	assert.Equal(t, "41", results[1].RawVersion)

	// Low-confidence token rule last, with no version evidence
	assert.Equal(t, "server_token", results[2].PatternName)
	assert.Empty(t, results[2].RawVersion)
	assert.Empty(t, results[2].NormalizedVersion)
}

func TestMatchNoHits(t *testing.T) {
	engine := NewEngine(webServerCorpus(), Options{})
	assert.Empty(t, engine.Match(context.Background(), "Server: lighttpd/1.4"))
}

func TestMatchOrderingContract(t *testing.T) {
	// Same priority, different confidence: confidence breaks the tie.
	// Identical priority and confidence: corpus order is preserved.
	c := corpus.New([]domain.ProductEntry{
		{
			Vendor: "V", VendorID: "v", Product: "P", ProductID: "p", Category: domain.CategoryWeb,
			GenericPatterns: []domain.PatternRule{
				{Name: "first", Pattern: `x`, Priority: 100, Confidence: 0.5},
				{Name: "second", Pattern: `x`, Priority: 100, Confidence: 0.5},
				{Name: "confident", Pattern: `x`, Priority: 100, Confidence: 0.9},
				{Name: "urgent", Pattern: `x`, Priority: 180, Confidence: 0.1},
			},
		},
	})
	engine := NewEngine(c, Options{})

	results := engine.Match(context.Background(), "x")
	require.Len(t, results, 4)
	assert.Equal(t, "urgent", results[0].PatternName)
	assert.Equal(t, "confident", results[1].PatternName)
	assert.Equal(t, "first", results[2].PatternName)
	assert.Equal(t, "second", results[3].PatternName)
}

func TestMatchNoDeduplication(t *testing.T) {
	engine := NewEngine(webServerCorpus(), Options{})

	results := engine.Match(context.Background(), apacheBanner)
	products := make(map[string]int)
	for _, r := range results {
		products[r.ProductID]++
	}
	assert.Equal(t, 3, products["httpd"], "every hitting rule produces its own result")
}

func TestBestPerProduct(t *testing.T) {
	engine := NewEngine(webServerCorpus(), Options{})

	results := BestPerProduct(engine.Match(context.Background(), apacheBanner))
	require.Len(t, results, 1)
	assert.Equal(t, "server_header", results[0].PatternName)

	assert.Empty(t, BestPerProduct(nil))
}

func TestMatchProduct(t *testing.T) {
	engine := NewEngine(webServerCorpus(), Options{})

	results := engine.MatchProduct(context.Background(), apacheBanner, "apache", "httpd")
	require.Len(t, results, 3)

	assert.Empty(t, engine.MatchProduct(context.Background(), apacheBanner, "nginx", "nginx"))
	assert.Empty(t, engine.MatchProduct(context.Background(), apacheBanner, "no", "such"))
}

func TestMatchCancelledContext(t *testing.T) {
	engine := NewEngine(webServerCorpus(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Already-cancelled context: no rule runs, empty partial result.
	assert.Empty(t, engine.Match(ctx, apacheBanner))
}

func TestMatchManyRulesCompletes(t *testing.T) {
	entries := make([]domain.ProductEntry, 0, 100)
	for i := 0; i < 100; i++ {
		rules := make([]domain.PatternRule, 0, 100)
		for j := 0; j < 100; j++ {
			rules = append(rules, domain.PatternRule{
				Name:       fmt.Sprintf("rule_%d", j),
				Pattern:    fmt.Sprintf(`token_%d_%d`, i, j),
				Priority:   j % 200,
				Confidence: 0.5,
			})
		}
		entries = append(entries, domain.ProductEntry{
			Vendor:          fmt.Sprintf("Vendor %d", i),
			VendorID:        fmt.Sprintf("vendor-%d", i),
			Product:         fmt.Sprintf("Product %d", i),
			ProductID:       fmt.Sprintf("product-%d", i),
			Category:        domain.CategoryWeb,
			GenericPatterns: rules,
		})
	}

	engine := NewEngine(corpus.New(entries), Options{})
	require.Equal(t, 10000, engine.RuleCount())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := engine.Match(ctx, "token_42_7 and some padding text")
	require.Len(t, results, 1)
	assert.Equal(t, "vendor-42", results[0].VendorID)
}

func TestCompileIssuesSkipBadRules(t *testing.T) {
	c := corpus.New([]domain.ProductEntry{
		{
			Vendor: "V", VendorID: "v", Product: "P", ProductID: "p", Category: domain.CategoryWeb,
			GenericPatterns: []domain.PatternRule{
				{Name: "good", Pattern: `ok`, Priority: 100, Confidence: 0.5},
				{Name: "broken", Pattern: `([unclosed`, Priority: 100, Confidence: 0.5},
			},
		},
	})
	engine := NewEngine(c, Options{})

	assert.Equal(t, 1, engine.RuleCount())
	require.Len(t, engine.CompileIssues(), 1)
	assert.Contains(t, engine.CompileIssues()[0].Location, "broken")

	// The surviving rule still evaluates
	assert.Len(t, engine.Match(context.Background(), "ok"), 1)
}

func TestVersionedBucketDeterministicOrder(t *testing.T) {
	// Equal priority and confidence across buckets: sorted label order
	// decides, run after run.
	entry := domain.ProductEntry{
		Vendor: "V", VendorID: "v", Product: "P", ProductID: "p", Category: domain.CategoryWeb,
		VersionedPatterns: map[string][]domain.PatternRule{
			"3.x": {{Name: "three", Pattern: `x`, Priority: 100, Confidence: 0.5}},
			"1.x": {{Name: "one", Pattern: `x`, Priority: 100, Confidence: 0.5}},
			"2.x": {{Name: "two", Pattern: `x`, Priority: 100, Confidence: 0.5}},
		},
	}

	for i := 0; i < 5; i++ {
		engine := NewEngine(corpus.New([]domain.ProductEntry{entry}), Options{})
		results := engine.Match(context.Background(), "x")
		require.Len(t, results, 3)
		assert.Equal(t, "one", results[0].PatternName)
		assert.Equal(t, "two", results[1].PatternName)
		assert.Equal(t, "three", results[2].PatternName)
	}
}

func TestVersionGroupBeyondCapturesIgnored(t *testing.T) {
	c := corpus.New([]domain.ProductEntry{
		{
			Vendor: "V", VendorID: "v", Product: "P", ProductID: "p", Category: domain.CategoryWeb,
			GenericPatterns: []domain.PatternRule{
				{Name: "overreach", Pattern: `Apache/([0-9.]+)`, VersionGroup: 5, Priority: 100, Confidence: 0.5},
			},
		},
	})
	engine := NewEngine(c, Options{})

	results := engine.Match(context.Background(), "Apache/2.4.41")
	require.Len(t, results, 1)
	assert.Empty(t, results[0].RawVersion)
}
