package model

import (
	"fmt"
	"math"
	"time"
)

// TransactionStatus indicates which confidence tier produced a posting.
type TransactionStatus string

// Transaction status constants.
const (
	StatusAutoPosted     TransactionStatus = "AUTO_POSTED"
	StatusPatternMatched TransactionStatus = "PATTERN_MATCHED"
	StatusUserConfirmed  TransactionStatus = "USER_CONFIRMED"
)

// Transaction is the output ledger entry for one processed document.
// It is created once and never mutated; corrections produce a new
// learning event, not an edit.
type Transaction struct {
	Date          time.Time
	ID            string
	Vendor        string
	DebitAccount  string
	CreditAccount string
	TDSAccount    string // empty when no withholding applies
	Status        TransactionStatus
	DebitAmount   float64
	CreditAmount  float64
	TDSAmount     float64
	Confidence    float64
}

// HasTDS reports whether a withholding leg is present.
func (t *Transaction) HasTDS() bool {
	return t.TDSAccount != ""
}

// Validate checks the double-entry invariants: the TDS account and amount
// are both present or both absent, and debit = credit + tds.
func (t *Transaction) Validate() error {
	if (t.TDSAccount == "") != (t.TDSAmount == 0) {
		return fmt.Errorf("tds account and amount must both be set or both be empty (account=%q amount=%v)", t.TDSAccount, t.TDSAmount)
	}
	if math.Abs(t.DebitAmount-(t.CreditAmount+t.TDSAmount)) > 1e-6 {
		return fmt.Errorf("debit %v does not balance credit %v + tds %v", t.DebitAmount, t.CreditAmount, t.TDSAmount)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", t.Confidence)
	}
	return nil
}
