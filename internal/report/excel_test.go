package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/autobooks/autobooks/internal/ledger"
	"github.com/autobooks/autobooks/internal/model"
)

func newTestLedger(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestExportWritesWorkbook(t *testing.T) {
	store := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, model.Transaction{
		ID:            uuid.NewString(),
		Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Vendor:        "Acme Rent Co",
		DebitAccount:  "Rent Expense",
		DebitAmount:   50000,
		CreditAccount: "Acme Rent Co (Payable)",
		CreditAmount:  45000,
		TDSAccount:    "TDS Payable",
		TDSAmount:     5000,
		Confidence:    1.0,
		Status:        model.StatusAutoPosted,
	}))
	require.NoError(t, store.SaveTransaction(ctx, model.Transaction{
		ID:            uuid.NewString(),
		Date:          time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Vendor:        "Mystery Vendor",
		DebitAccount:  "Miscellaneous Expense",
		DebitAmount:   800,
		CreditAccount: "Mystery Vendor (Payable)",
		CreditAmount:  800,
		Confidence:    0.35,
		Status:        model.StatusUserConfirmed,
	}))

	outPath := filepath.Join(t.TempDir(), "out", "ledger.xlsx")
	rows, err := NewExporter(store).Export(ctx, ledger.Filter{}, outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Transactions"}, f.GetSheetList())

	got, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 3)

	assert.Equal(t, "Date", got[0][0])
	assert.Equal(t, "Status", got[0][9])

	assert.Equal(t, "2024-03-15", got[1][0])
	assert.Equal(t, "Acme Rent Co", got[1][1])
	assert.Equal(t, "Rent Expense", got[1][2])
	assert.Equal(t, "AUTO_POSTED", got[1][9])

	assert.Equal(t, "Mystery Vendor", got[2][1])
	assert.Empty(t, got[2][6], "transactions without TDS leave the account blank")
}

func TestExportEmptyLedger(t *testing.T) {
	store := newTestLedger(t)

	outPath := filepath.Join(t.TempDir(), "empty.xlsx")
	rows, err := NewExporter(store).Export(context.Background(), ledger.Filter{}, outPath)
	require.NoError(t, err)
	assert.Zero(t, rows)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Date", got[0][0])
}

func TestExportHonorsFilter(t *testing.T) {
	store := newTestLedger(t)
	ctx := context.Background()

	for _, status := range []model.TransactionStatus{
		model.StatusAutoPosted, model.StatusUserConfirmed,
	} {
		require.NoError(t, store.SaveTransaction(ctx, model.Transaction{
			ID:            uuid.NewString(),
			Date:          time.Now().UTC(),
			Vendor:        "V",
			DebitAccount:  "Rent Expense",
			DebitAmount:   100,
			CreditAccount: "V (Payable)",
			CreditAmount:  100,
			Confidence:    0.5,
			Status:        status,
		}))
	}

	outPath := filepath.Join(t.TempDir(), "filtered.xlsx")
	rows, err := NewExporter(store).Export(ctx,
		ledger.Filter{Status: model.StatusAutoPosted}, outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}
