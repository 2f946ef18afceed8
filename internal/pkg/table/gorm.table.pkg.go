package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"order-ledger/internal/common/errs"
	"order-ledger/internal/common/models"

	"gorm.io/gorm"
)

// GormStore keeps sheets in ledger_sheets/ledger_rows. Every write bumps
// ledger_sheets.version first, so writes to one sheet are serialized on that
// row and conditional writes can compare against it.
type GormStore struct {
	db *gorm.DB
}

type gormSheet struct {
	db   *gorm.DB
	id   uint
	name string
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Sheet(ctx context.Context, name string) (Table, error) {
	var sheet models.LedgerSheet
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&sheet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("sheet %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet %s: %w", name, err)
	}
	return &gormSheet{db: s.db, id: sheet.ID, name: sheet.Name}, nil
}

func (s *GormStore) EnsureSheet(ctx context.Context, name string, header Row) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sheet models.LedgerSheet
		err := tx.Where("name = ?", name).First(&sheet).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sheet = models.LedgerSheet{Name: name}
		if err := tx.Create(&sheet).Error; err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		cells, err := encodeCells(header)
		if err != nil {
			return err
		}
		return tx.Create(&models.LedgerRow{SheetID: sheet.ID, Position: 1, Cells: cells}).Error
	})
}

func (g *gormSheet) Name() string {
	return g.name
}

func (g *gormSheet) ReadColumn(ctx context.Context, column, startRow, count int) ([]string, error) {
	rows, err := g.ReadRows(ctx, startRow, count, column)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.Cell(column)
	}
	return values, nil
}

func (g *gormSheet) ReadRows(ctx context.Context, startRow, count, columnCount int) ([]Row, error) {
	if startRow < 1 || count < 0 {
		return nil, fmt.Errorf("invalid range start=%d count=%d", startRow, count)
	}

	var records []models.LedgerRow
	err := g.db.WithContext(ctx).
		Where("sheet_id = ? AND position >= ? AND position < ?", g.id, startRow, startRow+count).
		Order("position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", g.name, err)
	}

	byPosition := make(map[int]Row, len(records))
	for _, rec := range records {
		row, err := decodeCells(rec.Cells)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", rec.Position, g.name, err)
		}
		byPosition[rec.Position] = row
	}

	out := make([]Row, 0, count)
	for i := startRow; i < startRow+count; i++ {
		out = append(out, fit(byPosition[i], columnCount))
	}
	return out, nil
}

func (g *gormSheet) AppendRow(ctx context.Context, values Row) error {
	_, err := g.AppendRowAt(ctx, -1, values)
	return err
}

func (g *gormSheet) InsertRowAfter(ctx context.Context, rowIndex int, values Row) error {
	_, err := g.InsertRowAfterAt(ctx, -1, rowIndex, values)
	return err
}

func (g *gormSheet) AppendRowAt(ctx context.Context, version int64, values Row) (int64, error) {
	cells, err := encodeCells(values)
	if err != nil {
		return 0, err
	}
	return g.write(ctx, version, func(tx *gorm.DB, last int) error {
		return tx.Create(&models.LedgerRow{SheetID: g.id, Position: last + 1, Cells: cells}).Error
	})
}

func (g *gormSheet) InsertRowAfterAt(ctx context.Context, version int64, rowIndex int, values Row) (int64, error) {
	cells, err := encodeCells(values)
	if err != nil {
		return 0, err
	}
	return g.write(ctx, version, func(tx *gorm.DB, last int) error {
		if rowIndex < 1 || rowIndex > last {
			return fmt.Errorf("insert after row %d: out of range 1..%d", rowIndex, last)
		}

		err := tx.Model(&models.LedgerRow{}).
			Where("sheet_id = ? AND position > ?", g.id, rowIndex).
			UpdateColumn("position", gorm.Expr("position + ?", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to shift rows: %w", err)
		}

		return tx.Create(&models.LedgerRow{SheetID: g.id, Position: rowIndex + 1, Cells: cells}).Error
	})
}

func (g *gormSheet) LastRowIndex(ctx context.Context) (int, error) {
	return lastPosition(g.db.WithContext(ctx), g.id)
}

func (g *gormSheet) Version(ctx context.Context) (int64, error) {
	return sheetVersion(g.db.WithContext(ctx), g.id)
}

// write bumps the sheet version before running fn, which also takes the
// sheet row lock for the rest of the transaction. A negative expect skips
// the version check.
func (g *gormSheet) write(ctx context.Context, expect int64, fn func(tx *gorm.DB, last int) error) (int64, error) {
	var version int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bump := tx.Model(&models.LedgerSheet{}).Where("id = ?", g.id)
		if expect >= 0 {
			bump = bump.Where("version = ?", expect)
		}
		res := bump.UpdateColumn("version", gorm.Expr("version + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to lock sheet %s: %w", g.name, res.Error)
		}
		if res.RowsAffected == 0 {
			if expect >= 0 {
				return errs.Conflict("sheet %s moved on from version %d", g.name, expect)
			}
			return errs.NotFound("sheet %q", g.name)
		}

		v, err := sheetVersion(tx, g.id)
		if err != nil {
			return err
		}
		version = v

		last, err := lastPosition(tx, g.id)
		if err != nil {
			return err
		}
		return fn(tx, last)
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

func sheetVersion(db *gorm.DB, sheetID uint) (int64, error) {
	var version int64
	err := db.Model(&models.LedgerSheet{}).
		Where("id = ?", sheetID).
		Select("version").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet version: %w", err)
	}
	return version, nil
}

func lastPosition(db *gorm.DB, sheetID uint) (int, error) {
	var last int
	err := db.Model(&models.LedgerRow{}).
		Where("sheet_id = ?", sheetID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read last row: %w", err)
	}
	return last, nil
}

func encodeCells(values Row) (models.JSONB, error) {
	if values == nil {
		values = Row{}
	}
	b, err := json.Marshal([]string(values))
	if err != nil {
		return nil, fmt.Errorf("failed to encode cells: %w", err)
	}
	return models.JSONB(b), nil
}

func decodeCells(cells models.JSONB) (Row, error) {
	if len(cells) == 0 || string(cells) == "null" {
		return Row{}, nil
	}
	var row []string
	if err := json.Unmarshal(cells, &row); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	return Row(row), nil
}
