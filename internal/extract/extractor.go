// Package extract pulls structured invoice fields out of raw document text.
//
// Extraction is deterministic regex matching. It never fails: fields that
// cannot be found are left as zero values and the overall extraction
// confidence reflects how many fields were recovered.
package extract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/autobooks/autobooks/internal/model"
)

var (
	vendorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:Bill\s+to|From|Vendor|Supplier|Company)\s*[:\-]?\s*([A-Za-z][A-Za-z\s&.,]+?)(?:\n|$|Amount|Total|Date)`),
		regexp.MustCompile(`(?im)(?:Billed\s+to|Invoice\s+from)\s*[:\-]?\s*([A-Za-z][A-Za-z\s&.,]+?)(?:\n|$)`),
	}
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:Grand\s+Total|Total\s+Due|Amount\s+Due|Net\s+Amount|Total|Amount)\s*[:\-]?\s*(?:₹|Rs\.?|INR)?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
		regexp.MustCompile(`(?im)(?:₹|Rs\.?|INR)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)\s*(?:Total|Grand|Net)`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:Invoice\s+Date|Bill\s+Date|Date)\s*[:\-]?\s*([0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{4})`),
		regexp.MustCompile(`(?im)(?:Invoice\s+Date|Bill\s+Date|Date)\s*[:\-]?\s*([0-9]{4}[/-][0-9]{1,2}[/-][0-9]{1,2})`),
	}
	tdsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)TDS(?:\s+Rate)?\s*[:\-]?\s*([0-9]+(?:\.[0-9]+)?)\s*%`),
		regexp.MustCompile(`(?im)([0-9]+(?:\.[0-9]+)?)\s*%\s*TDS`),
	}

	dateLayouts = []string{"02/01/2006", "02-01-2006", "2006-01-02", "2006/01/02", "01/02/2006", "01-02-2006"}
)

const fieldCount = 4 // vendor, amount, date, tds percentage

// Extract parses structured fields from raw text. It never returns an
// error; callers inspect ExtractionConfidence to decide how much to trust
// the result.
func Extract(rawText string) model.InvoiceRecord {
	record := model.InvoiceRecord{RawText: rawText}
	hits := 0

	if v := firstMatch(vendorPatterns, rawText); v != "" {
		record.Vendor = strings.TrimRight(strings.TrimSpace(v), ".,")
		hits++
	}

	if v := firstMatch(amountPatterns, rawText); v != "" {
		if amount, ok := parseAmount(v); ok && amount > 0 {
			record.Amount = amount
			hits++
		}
	}

	if v := firstMatch(datePatterns, rawText); v != "" {
		if date, ok := parseDate(v); ok {
			record.Date = date
			hits++
		}
	}

	if v := firstMatch(tdsPatterns, rawText); v != "" {
		if pct, err := strconv.ParseFloat(v, 64); err == nil && pct >= 0 && pct <= 100 {
			record.TDSPercentage = pct
			hits++
		}
	}

	record.ExtractionConfidence = float64(hits) / fieldCount

	slog.Debug("Extracted invoice fields",
		"vendor", record.Vendor,
		"amount", record.Amount,
		"confidence", record.ExtractionConfidence)
	return record
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func parseAmount(s string) (float64, bool) {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(s)
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		slog.Warn("Could not parse amount", "value", s)
		return 0, false
	}
	return amount, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, true
		}
	}
	slog.Warn("Could not parse date", "value", s)
	return time.Time{}, false
}
