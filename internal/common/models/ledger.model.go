package models

import "time"

// LedgerSheet is a named ordered table. Version is bumped on every write and checked by
// conditional writes.
type LedgerSheet struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Version   int64     `json:"version" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LedgerSheet) TableName() string {
	return "ledger_sheets"
}

// LedgerRow is one positional row of a sheet. Position is 1-based and
// contiguous per sheet; Cells holds a JSON array of strings.
type LedgerRow struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SheetID   uint      `json:"sheet_id" gorm:"not null;index:idx_ledger_rows_sheet_position,priority:1"`
	Position  int       `json:"position" gorm:"not null;index:idx_ledger_rows_sheet_position,priority:2"`
	Cells     JSONB     `json:"cells" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LedgerRow) TableName() string {
	return "ledger_rows"
}
