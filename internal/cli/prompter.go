package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/autobooks/autobooks/internal/classifier"
	"github.com/autobooks/autobooks/internal/config"
	"github.com/autobooks/autobooks/internal/model"
	"github.com/autobooks/autobooks/internal/scorer"
)

// Prompter asks the reviewer to pick a category for low confidence
// invoices. It implements the engine's Resolver interface.
type Prompter struct {
	writer   io.Writer
	reader   *lineReader
	accounts *classifier.Classifier
	cfg      config.Config
}

// NewPrompter creates a Prompter. A nil reader or writer falls back to
// stdin and stdout.
func NewPrompter(cfg config.Config, reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		writer:   writer,
		reader:   newLineReader(reader),
		accounts: classifier.New(cfg),
		cfg:      cfg,
	}
}

// Ask shows the invoice and reads a category choice. Pressing enter accepts
// the keyword-based suggestion.
func (p *Prompter) Ask(ctx context.Context, invoice model.InvoiceRecord, confidence float64) (model.Category, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	suggested := model.CategoryOther
	if guess := scorer.GuessCategory(invoice.Vendor + " " + invoice.RawText); guess != model.CategorySuspense {
		suggested = guess
	}

	if _, err := fmt.Fprintln(p.writer, RenderBox("Invoice Review", p.formatInvoice(invoice, confidence))); err != nil {
		return "", fmt.Errorf("failed to write invoice box: %w", err)
	}

	categories := model.Categories()
	for i, category := range categories {
		resolution := p.accounts.Resolve(category)
		line := fmt.Sprintf("  [%d] %-12s %s (TDS %.0f%%)",
			i+1, category, resolution.DebitAccount, resolution.TDSRate)
		if category == suggested {
			line += SubtleStyle.Render("  (suggested)")
		}
		if _, err := fmt.Fprintln(p.writer, line); err != nil {
			return "", fmt.Errorf("failed to write category option: %w", err)
		}
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		return "", fmt.Errorf("failed to write newline: %w", err)
	}

	for {
		prompt := fmt.Sprintf("Category [1-%d, enter=%s]", len(categories), suggested)
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input closed before a category was chosen: %w", err)
		}
		if err != nil {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return suggested, nil
		}

		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(categories) {
			return categories[n-1], nil
		}
		if category := model.Category(strings.ToLower(line)); category.Known() {
			return category, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please pick a listed category")); err != nil {
			return "", fmt.Errorf("failed to write retry message: %w", err)
		}
	}
}

func (p *Prompter) formatInvoice(invoice model.InvoiceRecord, confidence float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vendor:     %s\n", invoice.Vendor)
	fmt.Fprintf(&b, "Amount:     %.2f\n", invoice.Amount)
	if !invoice.Date.IsZero() {
		fmt.Fprintf(&b, "Date:       %s\n", invoice.Date.Format("2006-01-02"))
	}
	if invoice.TDSPercentage > 0 {
		fmt.Fprintf(&b, "TDS:        %.1f%%\n", invoice.TDSPercentage)
	}
	fmt.Fprintf(&b, "Confidence: %s", p.formatConfidence(confidence))

	if excerpt := excerptText(invoice.RawText, 160); excerpt != "" {
		fmt.Fprintf(&b, "\n\n%s", SubtleStyle.Render(excerpt))
	}
	return b.String()
}

func (p *Prompter) formatConfidence(confidence float64) string {
	text := fmt.Sprintf("%.2f", confidence)
	switch {
	case confidence >= p.cfg.ConfidenceMedium:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

func excerptText(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "…"
}
