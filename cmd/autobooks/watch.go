package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/autobooks/autobooks/internal/watch"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox directory and process invoices as they arrive",
		Long: `Watch monitors the configured inbox directory. Each new .txt file is
classified and posted to the ledger, then moved into the archive
directory. Run it alongside a scanner or mail export job.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context())
		},
	}
}

func runWatch(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := func(ctx context.Context, path string) error {
		txn, err := processFile(ctx, a, path)
		if err != nil {
			return err
		}
		printTransaction(txn)
		return nil
	}

	watcher := watch.New(a.cfg.InboxPath, a.cfg.ArchivePath, handler)
	err = watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("Watch stopped")
		return nil
	}
	return err
}
