// Package report exports the ledger to an Excel workbook for accountants.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/autobooks/autobooks/internal/ledger"
	"github.com/autobooks/autobooks/internal/model"
)

const sheetName = "Transactions"

var headers = []string{
	"Date", "Vendor",
	"Debit Account", "Debit Amount",
	"Credit Account", "Credit Amount",
	"TDS Account", "TDS Amount",
	"Confidence", "Status",
}

// Ledger is the slice of the transaction store the exporter needs.
type Ledger interface {
	ListTransactions(ctx context.Context, filter ledger.Filter) ([]model.Transaction, error)
	CountByStatus(ctx context.Context) (map[model.TransactionStatus]int, error)
}

// Exporter writes ledger contents to .xlsx files.
type Exporter struct {
	ledger Ledger
}

// NewExporter creates an Exporter backed by the given ledger.
func NewExporter(l Ledger) *Exporter {
	return &Exporter{ledger: l}
}

// Export writes all transactions matching the filter to an Excel workbook
// at outPath. It returns the number of rows written.
func (e *Exporter) Export(ctx context.Context, filter ledger.Filter, outPath string) (int, error) {
	txns, err := e.ledger.ListTransactions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeHeader(f); err != nil {
		return 0, err
	}

	for i, txn := range txns {
		if err := writeRow(f, i+2, txn); err != nil {
			return 0, err
		}
	}

	if err := e.writeSummary(ctx, f, len(txns)); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := f.SaveAs(outPath); err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	slog.Info("Exported ledger report", "path", outPath, "rows", len(txns))
	return len(txns), nil
}

func (e *Exporter) writeHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	widths := map[string]float64{
		"A": 12, "B": 24, "C": 22, "D": 14, "E": 28,
		"F": 14, "G": 14, "H": 12, "I": 12, "J": 18,
	}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, row int, txn model.Transaction) error {
	values := []any{
		txn.Date.Format("2006-01-02"), txn.Vendor,
		txn.DebitAccount, txn.DebitAmount,
		txn.CreditAccount, txn.CreditAmount,
		txn.TDSAccount, txn.TDSAmount,
		txn.Confidence, string(txn.Status),
	}
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell for row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

// writeSummary appends per-tier counts below the transaction rows.
func (e *Exporter) writeSummary(ctx context.Context, f *excelize.File, rows int) error {
	counts, err := e.ledger.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to count by status: %w", err)
	}

	base := rows + 3
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", base), "Summary"); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	statuses := []model.TransactionStatus{
		model.StatusAutoPosted,
		model.StatusPatternMatched,
		model.StatusUserConfirmed,
	}
	for i, status := range statuses {
		row := base + 1 + i
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(status)); err != nil {
			return fmt.Errorf("failed to write summary label: %w", err)
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), counts[status]); err != nil {
			return fmt.Errorf("failed to write summary count: %w", err)
		}
	}
	return nil
}
