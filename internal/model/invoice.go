// Package model defines the core domain models used throughout the application.
package model

import "time"

// InvoiceRecord holds the structured fields extracted from a single
// accounting document. It is immutable once extraction completes.
type InvoiceRecord struct {
	Date                 time.Time
	Vendor               string
	RawText              string
	Amount               float64
	TDSPercentage        float64 // 0 means no withholding declared
	ExtractionConfidence float64
}
