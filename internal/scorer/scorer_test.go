package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autobooks/autobooks/internal/config"
	"github.com/autobooks/autobooks/internal/model"
)

func ruleFor(vendor string, keywords ...string) model.Rule {
	return model.Rule{
		Vendor:        vendor,
		Keywords:      keywords,
		DebitAccount:  "Rent Expense",
		CreditAccount: vendor + " (Payable)",
		TDSApplicable: true,
		LearnedAt:     time.Now(),
		AppliedCount:  1,
	}
}

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Category
	}{
		{"rent keyword", "Monthly rent for office premises", model.CategoryRent},
		{"consultancy keyword", "Professional consulting services rendered", model.CategoryConsultancy},
		{"salary keyword", "Payroll remuneration for March", model.CategorySalary},
		{"contract keyword", "Catering for the annual offsite", model.CategoryContract},
		{"case insensitive", "LEASE AGREEMENT RENEWAL", model.CategoryRent},
		{"no keywords", "Sundry items purchased", model.CategorySuspense},
		{"empty text", "", model.CategorySuspense},
		// "lease" (rent) outranks "services" (consultancy): rent is
		// evaluated first in the fixed enumeration order.
		{"first category wins", "lease of equipment and services", model.CategoryRent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessCategory(tt.text))
		})
	}
}

func TestScoreNoRules(t *testing.T) {
	s := New(config.Default())

	invoice := model.InvoiceRecord{
		Vendor:        "Acme Rent Co",
		Amount:        50000,
		RawText:       "Invoice for office rent",
		TDSPercentage: 10,
	}

	// No vendor match: only the TDS bonus can apply (rent expects 10%).
	got := s.Score(invoice, nil)
	assert.InDelta(t, 0.15, got, 1e-9)
}

func TestScoreFullEvidence(t *testing.T) {
	s := New(config.Default())

	invoice := model.InvoiceRecord{
		Vendor:        "Acme Rent Co",
		Amount:        50000,
		RawText:       "Invoice for office rent at the usual premises",
		TDSPercentage: 10,
	}
	rules := []model.Rule{ruleFor("acme rent co", "rent", "premises")}

	// Vendor (+0.35) + keyword (+0.30) + amount band (+0.20) + TDS (+0.15).
	got := s.Score(invoice, rules)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestScoreNeverExceedsOne(t *testing.T) {
	s := New(config.Default())

	invoice := model.InvoiceRecord{
		Vendor:        "Acme Rent Co",
		Amount:        50000,
		RawText:       "rent lease premises rental accommodation",
		TDSPercentage: 10,
	}
	rules := []model.Rule{
		ruleFor("Acme Rent Co", "rent"),
		ruleFor("ACME RENT CO", "lease"),
		ruleFor("acme rent co", "premises"),
	}

	got := s.Score(invoice, rules)
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestScoreOrderIndependent(t *testing.T) {
	s := New(config.Default())

	invoice := model.InvoiceRecord{
		Vendor:        "Acme Rent Co",
		Amount:        50000,
		RawText:       "office rent",
		TDSPercentage: 10,
	}
	a := ruleFor("Acme Rent Co", "nothing-matches")
	b := ruleFor("Acme Rent Co", "rent")

	assert.Equal(t, s.Score(invoice, []model.Rule{a, b}), s.Score(invoice, []model.Rule{b, a}))
}

func TestScoreAmountOutsideBand(t *testing.T) {
	s := New(config.Default())

	invoice := model.InvoiceRecord{
		Vendor:        "Acme Rent Co",
		Amount:        5_000_000, // above the sanity band
		RawText:       "office rent",
		TDSPercentage: 10,
	}
	rules := []model.Rule{ruleFor("Acme Rent Co", "rent")}

	// Vendor + keyword + TDS, but no amount bonus.
	got := s.Score(invoice, rules)
	assert.InDelta(t, 0.80, got, 1e-9)
}

func TestScoreTDSTolerance(t *testing.T) {
	s := New(config.Default())

	base := model.InvoiceRecord{
		Vendor:  "Quiet Vendor",
		Amount:  500,
		RawText: "consulting fees",
	}

	withTDS := base
	withTDS.TDSPercentage = 10.05 // within 0.1 of the expected 10%
	assert.InDelta(t, 0.15, s.Score(withTDS, nil), 1e-9)

	wrongTDS := base
	wrongTDS.TDSPercentage = 5
	assert.InDelta(t, 0.0, s.Score(wrongTDS, nil), 1e-9)
}

func TestScoreNoTDSExpectedNoneDeclared(t *testing.T) {
	s := New(config.Default())

	invoice := model.InvoiceRecord{
		Vendor:  "Stationery Shop",
		Amount:  800,
		RawText: "sundry purchases", // no category keyword: suspense, 0% expected
	}

	assert.InDelta(t, 0.15, s.Score(invoice, nil), 1e-9)
}
