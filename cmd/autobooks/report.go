package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobooks/autobooks/internal/cli"
	"github.com/autobooks/autobooks/internal/ledger"
	"github.com/autobooks/autobooks/internal/report"
)

func reportCmd() *cobra.Command {
	var (
		output string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the ledger to an Excel workbook",
		Long: `Report exports posted transactions to an .xlsx workbook with one row
per transaction and a per-tier summary, ready to hand to an accountant.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			filter, err := buildFilter(from, to)
			if err != nil {
				return err
			}

			outPath := output
			if outPath == "" {
				outPath = a.cfg.ReportPath
			}

			rows, err := report.NewExporter(a.ledger).Export(cmd.Context(), filter, outPath)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Wrote %d transactions to %s", rows, outPath)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: configured report path)")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}

func buildFilter(from, to string) (ledger.Filter, error) {
	var filter ledger.Filter

	if from != "" {
		start, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		filter.Start = start
	}
	if to != "" {
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		// Include the whole end day.
		filter.End = end.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, nil
}
