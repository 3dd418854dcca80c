package engine

import (
	"context"

	"github.com/autobooks/autobooks/internal/model"
)

// RuleStore is the durable repository of learned vendor rules.
type RuleStore interface {
	LoadAll() []model.Rule
	Save(rule model.Rule) error
	FindMatching(vendor string, keywords []string) *model.Rule
	IncrementUsage(vendor string) error
}

// PatternIndex is the semantic similarity search over learned vendor
// fingerprints. Calls may cross a process boundary and be slow; the engine
// treats their failure as non-fatal.
type PatternIndex interface {
	Add(ctx context.Context, entry model.PatternEntry) error
	Query(ctx context.Context, vendor, contextText string, k int) ([]model.PatternMatch, error)
}

// Resolver obtains a category decision from a human reviewer. Ask may block
// indefinitely on input; on cancellation the engine falls back to "other".
type Resolver interface {
	Ask(ctx context.Context, invoice model.InvoiceRecord, confidence float64) (model.Category, error)
}
