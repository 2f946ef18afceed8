package database

import (
	"context"
	"fmt"

	"order-ledger/internal/common/models"
	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/table"
)

// SheetSeed is a sheet created on migration if missing.
type SheetSeed struct {
	Name   string
	Header table.Row
}

func (db *Database) RunMigrations() error {
	logger.Info.Println("Starting database migrations...")

	// Define models in dependency order
	models := []interface{}{
		&models.LedgerSheet{},
		&models.LedgerRow{},
	}

	for _, model := range models {
		logger.Info.Printf("Migrating model: %T", model)
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	logger.Info.Println("Database migrations completed successfully")
	return nil
}

// SeedSheets creates every missing sheet with its header row. Existing
// sheets are left untouched.
func SeedSheets(ctx context.Context, store table.Store, seeds ...SheetSeed) error {
	for _, seed := range seeds {
		if seed.Name == "" {
			continue
		}
		logger.Info.Printf("Seeding sheet: %s", seed.Name)
		if err := store.EnsureSheet(ctx, seed.Name, seed.Header); err != nil {
			return fmt.Errorf("failed to seed sheet %s: %w", seed.Name, err)
		}
	}
	return nil
}
