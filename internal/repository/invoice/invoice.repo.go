package invoice

import (
	"context"
	"fmt"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/table"

	"github.com/samber/lo"
)

const DateLayout = "2006-01-02"

// Header is row 1 of the invoice sheet.
var Header = table.Row{
	"Invoice", "Date", "Customer", "Phone", "Item", "Quantity",
	"Unit Price", "Line Total", "Discount", "Shipping", "Total",
}

type IRepository interface {
	Append(ctx context.Context, sheet string, inv *types.Invoice) error
}

type Repository struct {
	store table.Store
}

func NewRepo(store table.Store) *Repository {
	return &Repository{store: store}
}

// Append writes one row per invoice item. Invoice-level amounts repeat on
// every row so each row stands alone.
func (r *Repository) Append(ctx context.Context, sheet string, inv *types.Invoice) error {
	t, err := r.store.Sheet(ctx, sheet)
	if err != nil {
		return err
	}
	for _, row := range Rows(inv) {
		if err := t.AppendRow(ctx, row); err != nil {
			return fmt.Errorf("failed to append invoice %s: %w", inv.ID, err)
		}
	}
	return nil
}

func Rows(inv *types.Invoice) []table.Row {
	return lo.Map(inv.Items, func(item types.LineItem, _ int) table.Row {
		return table.Row{
			inv.ID,
			inv.Date.Format(DateLayout),
			inv.CustomerName,
			inv.Phone,
			item.Name,
			ledger.FormatNumber(item.Quantity),
			ledger.FormatNumber(item.UnitPrice),
			ledger.FormatNumber(item.Total()),
			ledger.FormatNumber(inv.Discount),
			ledger.FormatNumber(inv.Shipping),
			ledger.FormatNumber(inv.Total),
		}
	})
}
