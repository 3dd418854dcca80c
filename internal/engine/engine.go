// Package engine implements the confidence-tiered classification pipeline
// and the learning loop that feeds user decisions back into the rule store
// and pattern index.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/autobooks/autobooks/internal/classifier"
	"github.com/autobooks/autobooks/internal/common"
	"github.com/autobooks/autobooks/internal/config"
	"github.com/autobooks/autobooks/internal/model"
	"github.com/autobooks/autobooks/internal/scorer"
)

const maxLearnedKeywords = 5

// Engine orchestrates scoring, tier selection, account resolution, and
// learning for one document at a time. Multiple documents may be processed
// concurrently by independent workers sharing one Engine; the rule store's
// internal lock is the sole synchronization primitive.
type Engine struct {
	rules    RuleStore
	patterns PatternIndex
	resolver Resolver
	scorer   *scorer.Scorer
	accounts *classifier.Classifier
	cfg      config.Config
}

// New creates a classification engine with the given collaborators.
func New(cfg config.Config, rules RuleStore, patterns PatternIndex, resolver Resolver) *Engine {
	return &Engine{
		rules:    rules,
		patterns: patterns,
		resolver: resolver,
		scorer:   scorer.New(cfg),
		accounts: classifier.New(cfg),
		cfg:      cfg,
	}
}

// Process runs the tiered decision procedure for one extracted invoice and
// emits the resulting ledger transaction. Once extraction has succeeded
// nothing in here aborts the document: the worst outcome is a manual
// classification with a partially-failed learning step.
func (e *Engine) Process(ctx context.Context, invoice model.InvoiceRecord) (model.Transaction, error) {
	known := e.rules.LoadAll()
	confidence := e.scorer.Score(invoice, known)

	slog.Info("Scored invoice",
		"vendor", invoice.Vendor,
		"amount", invoice.Amount,
		"confidence", confidence,
		"rules", len(known))

	switch {
	case confidence >= e.cfg.ConfidenceHigh:
		return e.autoPost(invoice, confidence)

	case confidence >= e.cfg.ConfidenceMedium:
		if txn, ok := e.matchPattern(ctx, invoice, confidence); ok {
			return txn, nil
		}
		return e.askAndLearn(ctx, invoice, confidence)

	default:
		return e.askAndLearn(ctx, invoice, confidence)
	}
}

// Learn derives and persists a rule and pattern fingerprint from a resolved
// classification. Exposed so an out-of-band correction flow can feed the
// learning step directly; rule and pattern writes are independent commits.
func (e *Engine) Learn(ctx context.Context, vendor string, category model.Category, amount float64, rawText string) {
	keywords := deriveKeywords(rawText, category)
	resolution := e.accounts.Resolve(category)

	rule := model.Rule{
		Vendor:        vendor,
		Keywords:      keywords,
		DebitAccount:  resolution.DebitAccount,
		CreditAccount: classifier.CreditAccountFor(vendor),
		TDSApplicable: resolution.TDSRate > 0,
		LearnedAt:     time.Now().UTC(),
		AppliedCount:  1,
	}

	if err := e.rules.Save(rule); err != nil {
		slog.Warn("Failed to save learned rule",
			"vendor", vendor,
			"category", category,
			"error", err)
	}

	entry := model.PatternEntry{
		Vendor:      vendor,
		Keywords:    keywords,
		Category:    category,
		AmountRange: model.AmountRangeAround(amount),
		LearnedAt:   time.Now().UTC(),
	}
	if err := e.patterns.Add(ctx, entry); err != nil {
		// Future recall degrades silently without this fingerprint, so it
		// is worth a data-quality warning even though processing continues.
		slog.Warn("Failed to add pattern fingerprint, recall will degrade",
			"vendor", vendor,
			"category", category,
			"error", err)
	}

	slog.Info("Learned vendor rule",
		"vendor", vendor,
		"category", category,
		"keywords", len(keywords))
}

// autoPost emits a HIGH-tier transaction. No learning step runs; the rule
// that carried the vendor evidence gets its usage counter bumped.
func (e *Engine) autoPost(invoice model.InvoiceRecord, confidence float64) (model.Transaction, error) {
	category := scorer.GuessCategory(invoice.RawText)

	if rule := e.rules.FindMatching(invoice.Vendor, nil); rule != nil {
		if err := e.rules.IncrementUsage(invoice.Vendor); err != nil {
			slog.Warn("Failed to increment rule usage",
				"vendor", invoice.Vendor,
				"error", err)
		}
	}

	slog.Info("Auto-posting invoice",
		"vendor", invoice.Vendor,
		"category", category)
	return e.emit(invoice, category, model.StatusAutoPosted, confidence)
}

// matchPattern runs the MEDIUM tier: query the index and accept the first
// result in returned order above the similarity floor. Index failure or no
// acceptable match reports ok=false and the caller falls through to manual.
func (e *Engine) matchPattern(ctx context.Context, invoice model.InvoiceRecord, confidence float64) (model.Transaction, bool) {
	var matches []model.PatternMatch

	err := common.WithRetry(ctx, func() error {
		var queryErr error
		matches, queryErr = e.patterns.Query(ctx, invoice.Vendor, invoice.RawText, e.cfg.PatternQueryK)
		if queryErr != nil {
			return &common.RetryableError{Err: queryErr, Retryable: true}
		}
		return nil
	}, common.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     time.Second,
	})
	if err != nil {
		slog.Warn("Pattern index query failed, falling back to manual review",
			"vendor", invoice.Vendor,
			"error", err)
		return model.Transaction{}, false
	}

	// First-over-threshold in index order, not best-overall.
	for _, match := range matches {
		if match.Similarity > e.cfg.SimilarityFloor {
			slog.Info("Pattern matched",
				"vendor", invoice.Vendor,
				"pattern_vendor", match.Vendor,
				"category", match.Category,
				"similarity", match.Similarity)
			txn, err := e.emit(invoice, match.Category, model.StatusPatternMatched, confidence)
			if err != nil {
				slog.Warn("Pattern match produced invalid transaction, falling back to manual review",
					"vendor", invoice.Vendor,
					"error", err)
				return model.Transaction{}, false
			}
			return txn, true
		}
	}

	slog.Info("No pattern above similarity floor",
		"vendor", invoice.Vendor,
		"candidates", len(matches))
	return model.Transaction{}, false
}

// askAndLearn runs the MANUAL tier: ask the reviewer, emit USER_CONFIRMED,
// then always run the learning step.
func (e *Engine) askAndLearn(ctx context.Context, invoice model.InvoiceRecord, confidence float64) (model.Transaction, error) {
	category, err := e.resolver.Ask(ctx, invoice, confidence)
	if err != nil {
		if ctx.Err() != nil {
			return model.Transaction{}, ctx.Err()
		}
		slog.Warn("Reviewer unavailable, defaulting to other",
			"vendor", invoice.Vendor,
			"error", err)
		category = model.CategoryOther
	}

	txn, err := e.emit(invoice, category, model.StatusUserConfirmed, confidence)
	if err != nil {
		return model.Transaction{}, err
	}

	// The posting decision and the learning side-effect are independent
	// commits: a failed learn never invalidates the emitted transaction.
	e.Learn(ctx, invoice.Vendor, category, invoice.Amount, invoice.RawText)

	return txn, nil
}

// emit resolves accounts and TDS for the fixed category and builds the
// immutable ledger transaction.
func (e *Engine) emit(invoice model.InvoiceRecord, category model.Category, status model.TransactionStatus, confidence float64) (model.Transaction, error) {
	tds := e.accounts.TDSAmount(invoice.Amount, category)

	date := invoice.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	txn := model.Transaction{
		ID:            uuid.NewString(),
		Date:          date,
		Vendor:        invoice.Vendor,
		DebitAccount:  e.accounts.Resolve(category).DebitAccount,
		DebitAmount:   invoice.Amount,
		CreditAccount: classifier.CreditAccountFor(invoice.Vendor),
		CreditAmount:  invoice.Amount - tds,
		Confidence:    confidence,
		Status:        status,
	}
	if tds > 0 {
		txn.TDSAccount = classifier.TDSPayableAccount
		txn.TDSAmount = tds
	}

	if err := txn.Validate(); err != nil {
		return model.Transaction{}, fmt.Errorf("emitted transaction failed validation: %w", err)
	}
	return txn, nil
}

// deriveKeywords builds the learned keyword set: the category's fixed
// keyword list plus alphabetic tokens of at least three characters from the
// raw text, deduplicated and truncated to the keyword cap.
func deriveKeywords(rawText string, category model.Category) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0, maxLearnedKeywords)

	add := func(word string) {
		if len(keywords) >= maxLearnedKeywords || seen[word] {
			return
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	for _, kw := range scorer.KeywordsFor(category) {
		add(kw)
	}

	for _, word := range strings.Fields(strings.ToLower(rawText)) {
		if len(word) >= 3 && isAlphabetic(word) {
			add(word)
		}
	}

	return keywords
}

func isAlphabetic(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
