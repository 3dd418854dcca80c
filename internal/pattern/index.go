// Package pattern provides semantic similarity search over learned vendor
// fingerprints, backed by the chromem-go embedded vector database.
package pattern

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/autobooks/autobooks/internal/model"
)

const collectionName = "vendor_patterns"

// Index stores and retrieves vendor pattern fingerprints. Entries
// accumulate per vendor and are never mutated after creation.
type Index struct {
	collection *chromem.Collection
}

// NewIndex creates a pattern index persisted under dir. An empty dir keeps
// the index in memory, which tests rely on.
func NewIndex(dir string, embed chromem.EmbeddingFunc) (*Index, error) {
	if embed == nil {
		embed = TokenHashEmbedding()
	}

	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		if err = os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create pattern index directory: %w", err)
		}
		db, err = chromem.NewPersistentDB(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open pattern index: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern collection: %w", err)
	}

	return &Index{collection: collection}, nil
}

// Add stores the semantic fingerprint of a learning event.
func (ix *Index) Add(ctx context.Context, entry model.PatternEntry) error {
	learnedAt := entry.LearnedAt
	if learnedAt.IsZero() {
		learnedAt = time.Now().UTC()
	}

	doc := chromem.Document{
		ID:      fmt.Sprintf("%s_%s_%s", model.NormalizeVendor(entry.Vendor), entry.Category, uuid.NewString()),
		Content: embeddingText(entry.Vendor, strings.Join(entry.Keywords, " ")),
		Metadata: map[string]string{
			"vendor":     entry.Vendor,
			"category":   string(entry.Category),
			"amount_min": strconv.FormatFloat(entry.AmountRange.Min, 'f', 2, 64),
			"amount_max": strconv.FormatFloat(entry.AmountRange.Max, 'f', 2, 64),
			"learned_at": learnedAt.Format(time.RFC3339),
			"keywords":   strings.Join(entry.Keywords, ","),
		},
	}

	if err := ix.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("failed to add pattern for %q: %w", entry.Vendor, err)
	}

	slog.Debug("Added vendor pattern",
		"vendor", entry.Vendor,
		"category", entry.Category)
	return nil
}

// Query returns up to k patterns similar to the vendor and context text,
// ordered by descending similarity as computed by the index.
func (ix *Index) Query(ctx context.Context, vendor, contextText string, k int) ([]model.PatternMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("query size must be positive, got %d", k)
	}

	count := ix.collection.Count()
	if count == 0 {
		return []model.PatternMatch{}, nil
	}
	if k > count {
		k = count
	}

	results, err := ix.collection.Query(ctx, embeddingText(vendor, contextText), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("pattern query for %q failed: %w", vendor, err)
	}

	matches := make([]model.PatternMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, model.PatternMatch{
			Vendor:     r.Metadata["vendor"],
			Category:   model.ParseCategory(r.Metadata["category"]),
			Similarity: float64(r.Similarity),
			AmountRange: model.AmountRange{
				Min: parseAmount(r.Metadata["amount_min"]),
				Max: parseAmount(r.Metadata["amount_max"]),
			},
		})
	}

	return matches, nil
}

// Count returns the number of stored fingerprints.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

func embeddingText(vendor, rest string) string {
	return strings.TrimSpace(vendor + " " + rest)
}

func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
