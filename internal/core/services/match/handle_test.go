package match

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/corpus"
)

func singleRuleEngine(pattern string) *Engine {
	c := corpus.New([]domain.ProductEntry{
		{
			Vendor: "V", VendorID: "v", Product: "P", ProductID: "p", Category: domain.CategoryWeb,
			GenericPatterns: []domain.PatternRule{
				{Name: "r", Pattern: pattern, Priority: 100, Confidence: 0.5},
			},
		},
	})
	return NewEngine(c, Options{})
}

func TestHandleSwap(t *testing.T) {
	old := singleRuleEngine(`alpha`)
	h := NewHandle(old)

	require.Same(t, old, h.Get())
	require.Len(t, h.Get().Match(context.Background(), "alpha"), 1)

	replacement := singleRuleEngine(`beta`)
	previous := h.Swap(replacement)

	assert.Same(t, old, previous)
	assert.Same(t, replacement, h.Get())
	assert.Empty(t, h.Get().Match(context.Background(), "alpha"))
	assert.Len(t, h.Get().Match(context.Background(), "beta"), 1)
}

func TestHandleConcurrentSwapAndMatch(t *testing.T) {
	h := NewHandle(singleRuleEngine(`alpha`))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h.Get().Match(context.Background(), "alpha beta")
			}
		}()
	}
	for i := 0; i < 50; i++ {
		h.Swap(singleRuleEngine(`beta`))
	}
	wg.Wait()
}
