// Package ports declares the interfaces between the detection core and its
// adapters.
package ports

import (
	"context"

	"github.com/infopercept/rix/internal/core/domain"
)

// Matcher is the detection core seen from transports: evaluate a text blob,
// get back ranked results. Implementations must be safe for concurrent use
// and must honor the ordering contract (priority desc, confidence desc,
// corpus rule order for ties).
type Matcher interface {
	Match(ctx context.Context, text string) []domain.MatchResult
	MatchProduct(ctx context.Context, text, vendorID, productID string) []domain.MatchResult
}

// CorpusStore persists product entries outside the JSON file tree.
type CorpusStore interface {
	SaveEntry(entry domain.ProductEntry) error
	SaveAll(entries []domain.ProductEntry) error
	LoadAll() ([]domain.ProductEntry, error)
	Count() (int64, error)
	Close() error
}
