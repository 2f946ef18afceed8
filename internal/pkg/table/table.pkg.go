// Package table defines the ordered, sheet-like store the ledger is encoded
// in. Rows and columns are 1-based and row 1 of every sheet is its header.
package table

import "context"

// Row holds the cell values of one table row, column 1 first.
type Row []string

// Cell returns column (1-based) or "" when the row is shorter.
func (r Row) Cell(column int) string {
	if column < 1 || column > len(r) {
		return ""
	}
	return r[column-1]
}

// Table is one named sheet.
type Table interface {
	Name() string
	// ReadColumn returns count values of column starting at startRow.
	// Rows past the end read as "".
	ReadColumn(ctx context.Context, column, startRow, count int) ([]string, error)
	// ReadRows returns count rows starting at startRow, each padded or cut
	// to columnCount cells.
	ReadRows(ctx context.Context, startRow, count, columnCount int) ([]Row, error)
	AppendRow(ctx context.Context, values Row) error
	// InsertRowAfter places values at rowIndex+1, shifting later rows down.
	InsertRowAfter(ctx context.Context, rowIndex int, values Row) error
	LastRowIndex(ctx context.Context) (int, error)

	// Version increases with every write to the sheet.
	Version(ctx context.Context) (int64, error)
	// AppendRowAt and InsertRowAfterAt write only while the sheet is still
	// at version, returning the version after the write. A sheet that moved
	// on yields errs.ErrConcurrencyHazard and is left untouched. A negative
	// version writes unconditionally.
	AppendRowAt(ctx context.Context, version int64, values Row) (int64, error)
	InsertRowAfterAt(ctx context.Context, version int64, rowIndex int, values Row) (int64, error)
}

// Store resolves sheets by name. Unknown names yield errs.ErrNotFound.
type Store interface {
	Sheet(ctx context.Context, name string) (Table, error)
	EnsureSheet(ctx context.Context, name string, header Row) error
}

func fit(values Row, columnCount int) Row {
	out := make(Row, columnCount)
	copy(out, values)
	return out
}
