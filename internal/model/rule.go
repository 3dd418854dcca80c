package model

import (
	"strings"
	"time"
)

// Rule is a learned vendor policy. At most one Rule exists per normalized
// vendor name; it is created once and only its AppliedCount changes after.
type Rule struct {
	LearnedAt     time.Time `json:"learned_at"`
	Vendor        string    `json:"vendor"`
	DebitAccount  string    `json:"debit_account"`
	CreditAccount string    `json:"credit_account"`
	Keywords      []string  `json:"keywords"`
	AppliedCount  int       `json:"applied_count"`
	TDSApplicable bool      `json:"tds_applicable"`
}

// NormalizeVendor produces the case-insensitive identity key for a vendor.
func NormalizeVendor(vendor string) string {
	return strings.ToLower(strings.TrimSpace(vendor))
}

// MatchesVendor reports whether the rule belongs to the given vendor.
func (r *Rule) MatchesVendor(vendor string) bool {
	return NormalizeVendor(r.Vendor) == NormalizeVendor(vendor)
}

// Valid reports whether a loaded rule is usable. Malformed records are
// skipped on load rather than failing the whole store.
func (r *Rule) Valid() bool {
	return strings.TrimSpace(r.Vendor) != "" && r.DebitAccount != "" && r.CreditAccount != "" && r.AppliedCount >= 0
}
