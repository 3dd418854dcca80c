package model

import (
	"fmt"
	"time"
)

// PatternEntry is the semantic fingerprint of a learning event. Entries
// accumulate per vendor and are never mutated after creation.
type PatternEntry struct {
	LearnedAt   time.Time
	Vendor      string
	Category    Category
	AmountRange AmountRange
	Keywords    []string
}

// PatternMatch is a single similarity-search result from the pattern index.
type PatternMatch struct {
	Vendor      string
	Category    Category
	AmountRange AmountRange
	Similarity  float64
}

// AmountRange is the expected amount band for a learned pattern.
type AmountRange struct {
	Min float64
	Max float64
}

// AmountRangeAround derives the standard ±20% band from a learned amount.
func AmountRangeAround(amount float64) AmountRange {
	return AmountRange{Min: amount * 0.8, Max: amount * 1.2}
}

// Contains reports whether an amount falls inside the band.
func (r AmountRange) Contains(amount float64) bool {
	return amount >= r.Min && amount <= r.Max
}

func (r AmountRange) String() string {
	return fmt.Sprintf("%.0f-%.0f", r.Min, r.Max)
}
