package database

import (
	"context"
	"fmt"
	"testing"

	"order-ledger/internal/common/enum"
	"order-ledger/internal/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRejectsUnknownDriver(t *testing.T) {
	_, err := Setup(&Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateAndSeedSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := Setup(&Config{
		Driver:   enum.TableSQLite,
		Database: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.RunMigrations())
	// migrations are repeatable
	require.NoError(t, db.RunMigrations())

	store := table.NewGormStore(db.DB)
	header := table.Row{"Customer", "Item"}
	require.NoError(t, SeedSheets(ctx, store,
		SheetSeed{Name: "ORDER", Header: header},
		SheetSeed{Name: ""},
	))

	sheet, err := store.Sheet(ctx, "ORDER")
	require.NoError(t, err)
	require.NoError(t, sheet.AppendRow(ctx, table.Row{"Alice", "pen"}))

	// seeding again keeps existing rows
	require.NoError(t, SeedSheets(ctx, store, SheetSeed{Name: "ORDER", Header: header}))
	last, err := sheet.LastRowIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, last)

	rows, err := sheet.ReadRows(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, header, rows[0])
}
