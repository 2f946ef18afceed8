package invoice

import (
	"context"
	"testing"
	"time"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendWritesOneRowPerItem(t *testing.T) {
	ctx := context.Background()
	store := table.NewMemoryStore()
	require.NoError(t, store.EnsureSheet(ctx, "INVOICE", Header))

	date := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	inv := types.NewInvoice("INV-20240309-0001", date, "Alice", "08123", []types.LineItem{
		{Name: "pen", Quantity: 2, UnitPrice: 1000},
		{Name: "book", Quantity: 1, UnitPrice: 5000},
	}, 1000, 2000)

	require.NoError(t, NewRepo(store).Append(ctx, "INVOICE", inv))

	sheet, err := store.Sheet(ctx, "INVOICE")
	require.NoError(t, err)
	rows, err := sheet.ReadRows(ctx, 2, 2, len(Header))
	require.NoError(t, err)
	assert.Equal(t, table.Row{"INV-20240309-0001", "2024-03-09", "Alice", "08123", "pen", "2", "1000", "2000", "1000", "2000", "8000"}, rows[0])
	assert.Equal(t, "book", rows[1][4])
	assert.Equal(t, "5000", rows[1][7])
}

func TestAppendUnknownSheet(t *testing.T) {
	inv := types.NewInvoice("INV-1", time.Now(), "Alice", "1", []types.LineItem{{Name: "pen", Quantity: 1, UnitPrice: 1}}, 0, 0)
	err := NewRepo(table.NewMemoryStore()).Append(context.Background(), "INVOICE", inv)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
