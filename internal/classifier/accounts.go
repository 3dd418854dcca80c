// Package classifier maps ledger categories to account pairs and
// withholding-tax treatment.
package classifier

import (
	"fmt"

	"github.com/autobooks/autobooks/internal/config"
	"github.com/autobooks/autobooks/internal/model"
)

// TDSPayableAccount is the liability account withholding is routed to.
const TDSPayableAccount = "TDS Payable"

// debitAccounts is the static chart-of-accounts mapping. Read-only.
var debitAccounts = map[model.Category]string{
	model.CategoryRent:        "Rent Expense",
	model.CategoryConsultancy: "Professional Fees",
	model.CategorySalary:      "Salary Expense",
	model.CategoryContract:    "Contract Expense",
	model.CategoryOther:       "Miscellaneous Expense",
}

// Resolution is the account treatment for a category.
type Resolution struct {
	DebitAccount string
	TDSRate      float64
}

// Classifier resolves categories to ledger accounts. Pure lookup; it never
// rejects a category it does not recognize.
type Classifier struct {
	tdsRates map[model.Category]float64
}

// New creates a classifier from the application configuration.
func New(cfg config.Config) *Classifier {
	return &Classifier{tdsRates: cfg.TDSRates}
}

// Resolve returns the debit account and TDS rate for a category. Unknown or
// unsupported categories (including SUSPENSE) resolve to the "other" entry.
func (c *Classifier) Resolve(category model.Category) Resolution {
	debit, ok := debitAccounts[category]
	if !ok {
		category = model.CategoryOther
		debit = debitAccounts[model.CategoryOther]
	}
	return Resolution{
		DebitAccount: debit,
		TDSRate:      c.tdsRates[category],
	}
}

// CreditAccountFor instantiates the payable credit-account template.
func CreditAccountFor(vendor string) string {
	return fmt.Sprintf("%s (Payable)", vendor)
}

// TDSAmount computes the withholding for an amount under a category.
func (c *Classifier) TDSAmount(amount float64, category model.Category) float64 {
	rate := c.Resolve(category).TDSRate
	if rate <= 0 {
		return 0
	}
	return amount * rate / 100
}
