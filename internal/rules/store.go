// Package rules persists learned vendor rules in a durable keyed collection.
//
// The backing store is a single JSON file rewritten wholesale on every
// mutation via write-temp-then-rename, so a crash mid-write never corrupts
// the existing collection. A store-scoped mutex serializes all operations,
// reads included; the store, not the filesystem, is the unit of consistency.
package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/autobooks/autobooks/internal/model"
)

// Store is a concurrency-safe repository of learned vendor rules.
type Store struct {
	path string
	mu   sync.Mutex
}

type ruleFile struct {
	Rules []json.RawMessage `json:"rules"`
}

// NewStore creates a rule store backed by the given JSON file. The parent
// directory is created if needed; the file itself is created lazily.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("rules store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create rules directory: %w", err)
	}
	return &Store{path: path}, nil
}

// LoadAll reads every usable rule from the store. A missing file is a cold
// start, not an error; corrupt contents are logged and treated as empty;
// a single malformed record is skipped without failing the rest.
func (s *Store) LoadAll() []model.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save appends a new rule and persists the collection atomically. If a rule
// with the same normalized vendor already exists the call is a no-op:
// first-writer-wins, later learning events for a known vendor are dropped.
func (s *Store) Save(rule model.Rule) error {
	if !rule.Valid() {
		return fmt.Errorf("refusing to save malformed rule for vendor %q", rule.Vendor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.loadLocked()
	for _, r := range existing {
		if r.MatchesVendor(rule.Vendor) {
			slog.Info("Rule for vendor already exists, keeping first",
				"vendor", rule.Vendor)
			return nil
		}
	}

	return s.persistLocked(append(existing, rule))
}

// FindMatching returns the rule for a vendor, trying an exact
// case-insensitive vendor match first. When keywords are supplied, a rule
// sharing at least two of them also matches. Returns nil when nothing does.
func (s *Store) FindMatching(vendor string, keywords []string) *model.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := s.loadLocked()

	for i := range loaded {
		if loaded[i].MatchesVendor(vendor) {
			return &loaded[i]
		}
	}

	if len(keywords) == 0 {
		return nil
	}

	query := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		query[model.NormalizeVendor(kw)] = true
	}

	for i := range loaded {
		shared := 0
		for _, kw := range loaded[i].Keywords {
			if query[model.NormalizeVendor(kw)] {
				shared++
			}
		}
		if shared >= 2 {
			slog.Debug("Fuzzy rule match",
				"vendor", vendor,
				"rule_vendor", loaded[i].Vendor,
				"shared_keywords", shared)
			return &loaded[i]
		}
	}

	return nil
}

// IncrementUsage bumps the applied count for a vendor's rule, persisted
// with the same atomic-rewrite discipline. Unknown vendors are a no-op.
func (s *Store) IncrementUsage(vendor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := s.loadLocked()
	for i := range loaded {
		if loaded[i].MatchesVendor(vendor) {
			loaded[i].AppliedCount++
			return s.persistLocked(loaded)
		}
	}
	return nil
}

// loadLocked reads and decodes the backing file. Callers must hold mu.
func (s *Store) loadLocked() []model.Rule {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []model.Rule{}
	}
	if err != nil {
		slog.Warn("Failed to read rules file, treating store as empty",
			"path", s.path, "error", err)
		return []model.Rule{}
	}

	var file ruleFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("Rules file is corrupt, treating store as empty",
			"path", s.path, "error", err)
		return []model.Rule{}
	}

	loaded := make([]model.Rule, 0, len(file.Rules))
	for i, raw := range file.Rules {
		var rule model.Rule
		if err := json.Unmarshal(raw, &rule); err != nil {
			slog.Warn("Skipping malformed rule record",
				"path", s.path, "index", i, "error", err)
			continue
		}
		if !rule.Valid() {
			slog.Warn("Skipping invalid rule record",
				"path", s.path, "index", i, "vendor", rule.Vendor)
			continue
		}
		loaded = append(loaded, rule)
	}

	return loaded
}

// persistLocked serializes the full collection to a temp file and renames
// it over the durable file. Callers must hold mu.
func (s *Store) persistLocked(loaded []model.Rule) error {
	raws := make([]json.RawMessage, len(loaded))
	for i := range loaded {
		data, err := json.Marshal(loaded[i])
		if err != nil {
			return fmt.Errorf("failed to encode rule for %q: %w", loaded[i].Vendor, err)
		}
		raws[i] = data
	}

	data, err := json.MarshalIndent(ruleFile{Rules: raws}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rules file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write rules temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("Failed to clean up rules temp file", "path", tmp, "error", rmErr)
		}
		return fmt.Errorf("failed to replace rules file: %w", err)
	}

	return nil
}
