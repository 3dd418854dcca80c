// Package scorer computes rule-based classification confidence for invoices.
package scorer

import (
	"math"
	"strings"

	"github.com/autobooks/autobooks/internal/config"
	"github.com/autobooks/autobooks/internal/model"
)

// Evidence weights. The sum is capped at 1.0.
const (
	weightVendorMatch  = 0.35
	weightKeywordMatch = 0.30
	weightAmountBand   = 0.20
	weightTDSMatch     = 0.15
)

// categoryKeywords drives the first-hit category guess. Evaluation order is
// the fixed order of model.Categories.
var categoryKeywords = map[model.Category][]string{
	model.CategoryRent:        {"rent", "lease", "accommodation", "premises", "rental"},
	model.CategoryConsultancy: {"consult", "professional", "consulting", "fees", "services", "advice"},
	model.CategorySalary:      {"salary", "wages", "remuneration", "compensation", "payroll"},
	model.CategoryContract:    {"contract", "catering", "supply", "maintenance", "repair"},
}

// KeywordsFor returns the fixed keyword list for a category. The returned
// slice must not be modified.
func KeywordsFor(category model.Category) []string {
	return categoryKeywords[category]
}

// GuessCategory scans the fixed per-category keyword lists in enumeration
// order and returns the first category with any hit, or CategorySuspense.
func GuessCategory(text string) model.Category {
	lower := strings.ToLower(text)

	for _, category := range model.Categories() {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}

	return model.CategorySuspense
}

// Scorer computes classification confidence from extracted fields and the
// current rule set. It is stateless apart from its configuration.
type Scorer struct {
	tdsRates map[model.Category]float64
	bandMin  float64
	bandMax  float64
}

// New creates a scorer from the application configuration.
func New(cfg config.Config) *Scorer {
	return &Scorer{
		tdsRates: cfg.TDSRates,
		bandMin:  cfg.AmountBandMin,
		bandMax:  cfg.AmountBandMax,
	}
}

// Score returns a confidence in [0,1]. It is deterministic, side-effect
// free, and independent of the order of rules.
func (s *Scorer) Score(invoice model.InvoiceRecord, rules []model.Rule) float64 {
	score := 0.0

	var vendorRules []model.Rule
	for _, rule := range rules {
		if rule.MatchesVendor(invoice.Vendor) {
			vendorRules = append(vendorRules, rule)
		}
	}

	if len(vendorRules) > 0 {
		score += weightVendorMatch
	}

	if len(vendorRules) > 0 {
		haystack := strings.ToLower(invoice.Vendor + " " + invoice.RawText)
		for _, rule := range vendorRules {
			if anyKeywordIn(haystack, rule.Keywords) {
				score += weightKeywordMatch
				break
			}
		}
	}

	// Sanity band stands in for the matched rule's historical amount range,
	// which Rule does not track.
	if len(vendorRules) > 0 && invoice.Amount > 0 &&
		invoice.Amount >= s.bandMin && invoice.Amount <= s.bandMax {
		score += weightAmountBand
	}

	expected := s.tdsRates[GuessCategory(invoice.RawText)]
	switch {
	case invoice.TDSPercentage > 0 && math.Abs(invoice.TDSPercentage-expected) < 0.1:
		score += weightTDSMatch
	case invoice.TDSPercentage == 0 && expected == 0:
		score += weightTDSMatch
	}

	return math.Min(score, 1.0)
}

func anyKeywordIn(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
