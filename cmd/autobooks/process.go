package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/autobooks/autobooks/internal/cli"
	"github.com/autobooks/autobooks/internal/extract"
	"github.com/autobooks/autobooks/internal/model"
)

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <file-or-directory>",
		Short: "Classify invoice files and post them to the ledger",
		Long: `Process reads invoice text files, extracts the structured fields,
classifies each invoice through the confidence-tiered engine, and appends
the resulting transaction to the ledger. Low confidence invoices prompt
for a category and teach the engine a vendor rule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), args[0])
		},
	}
}

func runProcess(ctx context.Context, path string) error {
	files, err := collectInvoiceFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .txt invoice files found at %s", path)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Processing invoices"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	processed := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		txn, err := processFile(ctx, a, file)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.Error("Failed to process invoice", "file", file, "error", err)
			continue
		}
		processed++
		printTransaction(txn)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Processed %d of %d invoices", processed, len(files))))
	return nil
}

func processFile(ctx context.Context, a *app, path string) (model.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	invoice := extract.Extract(string(raw))
	if invoice.Vendor == "" {
		invoice.Vendor = vendorFromFilename(path)
	}

	txn, err := a.engine.Process(ctx, invoice)
	if err != nil {
		return model.Transaction{}, err
	}

	if err := a.ledger.SaveTransaction(ctx, txn); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

func collectInvoiceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// vendorFromFilename is the fallback when extraction finds no vendor line:
// "acme_rent_co.txt" becomes "acme rent co".
func vendorFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

func printTransaction(txn model.Transaction) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %s\n", txn.Status, txn.Vendor)
	fmt.Fprintf(&b, "  Dr %-24s %12.2f\n", txn.DebitAccount, txn.DebitAmount)
	fmt.Fprintf(&b, "  Cr %-24s %12.2f", txn.CreditAccount, txn.CreditAmount)
	if txn.HasTDS() {
		fmt.Fprintf(&b, "\n  Cr %-24s %12.2f", txn.TDSAccount, txn.TDSAmount)
	}
	fmt.Fprintf(&b, "\n  confidence %.2f", txn.Confidence)
	fmt.Println(cli.SubtleStyle.Render(b.String()))
}
