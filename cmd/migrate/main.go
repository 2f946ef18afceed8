package main

import (
	"context"

	config "order-ledger/configs"
	"order-ledger/internal/common/enum"
	database "order-ledger/internal/pkg/db"
	"order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/table"
	invoiceRepo "order-ledger/internal/repository/invoice"
)

func main() {
	logger.Setup()
	defer logger.Sync()

	env, err := config.GetEnv()
	if err != nil {
		logger.Error.Println("Error getting environment", err)
		panic(err)
	}
	if env.TableDriver == enum.TableMemory {
		logger.Info.Println("TABLE_DRIVER is memory, nothing to migrate")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup Database
	db, err := setupDB(env)
	if err != nil {
		logger.Error.Println("Error setting up Database", err)
		return
	}

	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	err = db.RunMigrations()
	if err != nil {
		logger.Error.Println("Error running migrations", err)
		return
	}

	err = database.SeedSheets(ctx, table.NewGormStore(db.DB),
		database.SheetSeed{Name: env.LedgerSheet, Header: ledger.Header},
		database.SheetSeed{Name: env.InvoiceSheet, Header: invoiceRepo.Header},
	)
	if err != nil {
		logger.Error.Println("Error seeding sheets", err)
		return
	}

	logger.Info.Println("Migrations completed successfully")
}

func setupDB(env *config.Config) (*database.Database, error) {
	return database.Setup(&database.Config{
		Host:     env.DBHost,
		Port:     env.DBPort,
		User:     env.DBUser,
		Password: env.DBPass,
		Database: env.DBName,
		SSLMode:  env.DBSSLMode,
		Driver:   env.TableDriver,
	})
}
