package engine

import (
	"context"
	"sync"

	"github.com/autobooks/autobooks/internal/model"
)

// stubIndex is a scriptable PatternIndex.
type stubIndex struct {
	queryErr error
	addErr   error
	matches  []model.PatternMatch
	added    []model.PatternEntry
	queries  int
	mu       sync.Mutex
}

func (s *stubIndex) Add(_ context.Context, entry model.PatternEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, entry)
	return nil
}

func (s *stubIndex) Query(_ context.Context, _, _ string, _ int) ([]model.PatternMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

// stubResolver answers every Ask with a fixed category or error.
type stubResolver struct {
	err      error
	category model.Category
	asked    int
}

func (s *stubResolver) Ask(_ context.Context, _ model.InvoiceRecord, _ float64) (model.Category, error) {
	s.asked++
	if s.err != nil {
		return "", s.err
	}
	return s.category, nil
}
