// Package ledger persists emitted transactions in SQLite for audit and
// reporting. Transactions are append-only: corrections happen as new
// learning events, never as edits here.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/autobooks/autobooks/internal/model"
)

// Store is a SQLite-backed transaction ledger.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Filter narrows ledger queries. Zero values mean unbounded.
type Filter struct {
	Start  time.Time
	End    time.Time
	Status model.TransactionStatus
}

// NewStore opens (and creates if needed) the ledger database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("ledger database path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies any pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for version, migration := range migrations {
		applied, err := s.migrationApplied(ctx, version+1)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", version+1, err)
		}

		if _, err := tx.ExecContext(ctx, migration); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", version+1, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES (?)`, version+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", version+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version+1, err)
		}
	}

	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id             TEXT PRIMARY KEY,
		date           TIMESTAMP NOT NULL,
		vendor         TEXT NOT NULL,
		debit_account  TEXT NOT NULL,
		debit_amount   REAL NOT NULL,
		credit_account TEXT NOT NULL,
		credit_amount  REAL NOT NULL,
		tds_account    TEXT NOT NULL DEFAULT '',
		tds_amount     REAL NOT NULL DEFAULT 0,
		confidence     REAL NOT NULL,
		status         TEXT NOT NULL,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	CREATE INDEX IF NOT EXISTS idx_transactions_vendor ON transactions(vendor);`,
}

func (s *Store) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}
	return count > 0, nil
}

// SaveTransaction appends one emitted transaction to the ledger.
func (s *Store) SaveTransaction(ctx context.Context, txn model.Transaction) error {
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid transaction: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, date, vendor, debit_account, debit_amount,
			 credit_account, credit_amount, tds_account, tds_amount,
			 confidence, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID, txn.Date, txn.Vendor, txn.DebitAccount, txn.DebitAmount,
		txn.CreditAccount, txn.CreditAmount, txn.TDSAccount, txn.TDSAmount,
		txn.Confidence, txn.Status)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
	}
	return nil
}

// ListTransactions returns ledger entries matching the filter, oldest first.
func (s *Store) ListTransactions(ctx context.Context, filter Filter) ([]model.Transaction, error) {
	query := `
		SELECT id, date, vendor, debit_account, debit_amount,
		       credit_account, credit_amount, tds_account, tds_amount,
		       confidence, status
		FROM transactions
		WHERE 1=1`
	args := []any{}

	if !filter.Start.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.Start)
	}
	if !filter.End.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.End)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var status string
		if err := rows.Scan(
			&txn.ID, &txn.Date, &txn.Vendor, &txn.DebitAccount, &txn.DebitAmount,
			&txn.CreditAccount, &txn.CreditAmount, &txn.TDSAccount, &txn.TDSAmount,
			&txn.Confidence, &status); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Status = model.TransactionStatus(status)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// CountByStatus returns how many ledger entries each tier produced.
func (s *Store) CountByStatus(ctx context.Context) (map[model.TransactionStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM transactions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.TransactionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[model.TransactionStatus(status)] = count
	}
	return counts, rows.Err()
}
