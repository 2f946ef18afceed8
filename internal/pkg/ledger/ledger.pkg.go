// Package ledger interprets a sheet as a sequence of customer blocks.
//
// A block starts at a row whose name cell is non-empty and runs through every
// following row whose name cell is blank. Row 1 is the header.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/table"

	"github.com/samber/lo"
)

const (
	HeaderRow    = 1
	FirstDataRow = 2

	ColumnName      = 1
	ColumnItem      = 2
	ColumnQuantity  = 3
	ColumnUnitPrice = 4
	ColumnCount     = 4
)

// Header is written to row 1 of freshly created ledger sheets.
var Header = table.Row{"Customer", "Item", "Quantity", "Unit Price"}

type Block struct {
	CustomerName string `json:"customer_name"`
	StartRow     int    `json:"start_row"`
	EndRow       int    `json:"end_row"`
}

// Rows is the number of table rows the block spans.
func (b Block) Rows() int {
	return b.EndRow - b.StartRow + 1
}

// AppendResult reports how far AppendItems got. Written counts items
// committed to the table even when an error is returned.
type AppendResult struct {
	Block   Block
	Written int
}

// Reconstruct scans the data rows and returns the blocks in table order.
// Rows before the first named row belong to no block.
func Reconstruct(ctx context.Context, t table.Table) ([]Block, error) {
	last, err := t.LastRowIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last row of %s: %w", t.Name(), err)
	}
	if last < FirstDataRow {
		return []Block{}, nil
	}

	names, err := t.ReadColumn(ctx, ColumnName, FirstDataRow, last-HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read names of %s: %w", t.Name(), err)
	}

	blocks := make([]Block, 0)
	var open *Block
	for i, raw := range names {
		row := FirstDataRow + i
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if open != nil {
			open.EndRow = row - 1
			blocks = append(blocks, *open)
		}
		open = &Block{CustomerName: name, StartRow: row}
	}
	if open != nil {
		open.EndRow = last
		blocks = append(blocks, *open)
	}
	return blocks, nil
}

// FindByName returns the first block named name. Later blocks with the same
// name are shadowed; see Duplicates.
func FindByName(ctx context.Context, t table.Table, name string) (Block, error) {
	blocks, err := Reconstruct(ctx, t)
	if err != nil {
		return Block{}, err
	}
	return firstNamed(blocks, name)
}

func firstNamed(blocks []Block, name string) (Block, error) {
	name = strings.TrimSpace(name)
	block, ok := lo.Find(blocks, func(b Block) bool { return b.CustomerName == name })
	if !ok {
		return Block{}, errs.NotFound("customer %q", name)
	}
	return block, nil
}

// Duplicates lists names owning more than one block, in table order.
func Duplicates(blocks []Block) []string {
	dups := lo.FindDuplicatesBy(blocks, func(b Block) string { return b.CustomerName })
	return lo.Map(dups, func(b Block, _ int) string { return b.CustomerName })
}

// AppendItems writes items for a customer. With a block, every item is
// inserted right after the block's current last row; without one, a new
// block is appended at the end of the table, named on its first row only.
//
// The block is checked against the sheet once, and every write is
// conditional on the sheet version seen before that check. Any other write
// to the sheet in between stops the call with errs.ErrConcurrencyHazard and
// the partial result.
func AppendItems(ctx context.Context, t table.Table, block *Block, customerName string, items []types.LineItem) (AppendResult, error) {
	if err := validateItems(items); err != nil {
		return AppendResult{}, err
	}
	if block != nil {
		return insertIntoBlock(ctx, t, *block, items)
	}
	return appendBlock(ctx, t, customerName, items)
}

func insertIntoBlock(ctx context.Context, t table.Table, block Block, items []types.LineItem) (AppendResult, error) {
	cur := block
	version, err := t.Version(ctx)
	if err != nil {
		return AppendResult{Block: cur}, fmt.Errorf("failed to read version of %s: %w", t.Name(), err)
	}
	if err := verifyBlock(ctx, t, cur); err != nil {
		return AppendResult{Block: cur}, err
	}

	for i, item := range items {
		version, err = t.InsertRowAfterAt(ctx, version, cur.EndRow, ItemRow("", item))
		if err != nil {
			return AppendResult{Block: cur, Written: i}, writeError(item, err)
		}
		cur.EndRow++
	}
	return AppendResult{Block: cur, Written: len(items)}, nil
}

func appendBlock(ctx context.Context, t table.Table, customerName string, items []types.LineItem) (AppendResult, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return AppendResult{}, errs.Validation("customer name is required")
	}

	version, err := t.Version(ctx)
	if err != nil {
		return AppendResult{}, fmt.Errorf("failed to read version of %s: %w", t.Name(), err)
	}
	if existing, err := FindByName(ctx, t, name); err == nil {
		return AppendResult{Block: existing}, errs.Conflict("block for %q appeared at row %d", name, existing.StartRow)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return AppendResult{}, err
	}

	last, err := t.LastRowIndex(ctx)
	if err != nil {
		return AppendResult{}, fmt.Errorf("failed to read last row of %s: %w", t.Name(), err)
	}
	cur := Block{CustomerName: name, StartRow: last + 1, EndRow: last}

	for i, item := range items {
		nameCell := ""
		if i == 0 {
			nameCell = name
		}
		version, err = t.AppendRowAt(ctx, version, ItemRow(nameCell, item))
		if err != nil {
			return AppendResult{Block: cur, Written: i}, writeError(item, err)
		}
		cur.EndRow++
	}
	return AppendResult{Block: cur, Written: len(items)}, nil
}

func writeError(item types.LineItem, err error) error {
	if errors.Is(err, errs.ErrConcurrencyHazard) {
		return err
	}
	return fmt.Errorf("failed to write item %q: %w", item.Name, err)
}

// verifyBlock checks the block still starts with its name, holds only blank
// continuation rows, and ends where expected.
func verifyBlock(ctx context.Context, t table.Table, b Block) error {
	last, err := t.LastRowIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to read last row of %s: %w", t.Name(), err)
	}
	if b.StartRow < FirstDataRow || b.EndRow < b.StartRow || b.EndRow > last {
		return errs.Conflict("block %q rows %d-%d no longer fit the sheet", b.CustomerName, b.StartRow, b.EndRow)
	}

	names, err := t.ReadColumn(ctx, ColumnName, b.StartRow, b.Rows()+1)
	if err != nil {
		return fmt.Errorf("failed to read names of %s: %w", t.Name(), err)
	}
	if strings.TrimSpace(names[0]) != b.CustomerName {
		return errs.Conflict("block %q moved from row %d", b.CustomerName, b.StartRow)
	}
	for i := 1; i < b.Rows(); i++ {
		if strings.TrimSpace(names[i]) != "" {
			return errs.Conflict("block %q was split at row %d", b.CustomerName, b.StartRow+i)
		}
	}
	if b.EndRow < last && strings.TrimSpace(names[b.Rows()]) == "" {
		return errs.Conflict("block %q grew past row %d", b.CustomerName, b.EndRow)
	}
	return nil
}

// ReadItems returns the line items stored in the block's rows. Rows without
// an item name are skipped.
func ReadItems(ctx context.Context, t table.Table, b Block) ([]types.LineItem, error) {
	rows, err := t.ReadRows(ctx, b.StartRow, b.Rows(), ColumnCount)
	if err != nil {
		return nil, fmt.Errorf("failed to read block %q: %w", b.CustomerName, err)
	}

	items := make([]types.LineItem, 0, len(rows))
	for i, row := range rows {
		name := strings.TrimSpace(row.Cell(ColumnItem))
		if name == "" {
			continue
		}
		qty, err := parseNumber(row.Cell(ColumnQuantity))
		if err != nil {
			return nil, errs.Validation("row %d quantity: %v", b.StartRow+i, err)
		}
		price, err := parseNumber(row.Cell(ColumnUnitPrice))
		if err != nil {
			return nil, errs.Validation("row %d unit price: %v", b.StartRow+i, err)
		}
		items = append(items, types.LineItem{Name: name, Quantity: qty, UnitPrice: price})
	}
	return items, nil
}

// ItemRow lays out one ledger row.
func ItemRow(name string, item types.LineItem) table.Row {
	return table.Row{name, item.Name, FormatNumber(item.Quantity), FormatNumber(item.UnitPrice)}
}

func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func validateItems(items []types.LineItem) error {
	if len(items) == 0 {
		return errs.Validation("item list is empty")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return errs.Validation("item %d has no name", i+1)
		}
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return errs.Validation("item %q has a negative quantity or price", item.Name)
		}
	}
	return nil
}
