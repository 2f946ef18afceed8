package database

import (
	"fmt"

	"order-ledger/internal/common/enum"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	_logger "gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Driver   enum.TableDriverEnum
}

type Database struct {
	*gorm.DB
	Config *Config
}

func Setup(cfg *Config) (*Database, error) {
	var db *gorm.DB
	var err error

	gormConfig := &gorm.Config{
		Logger: _logger.Default.LogMode(_logger.Silent),
	}

	switch cfg.Driver {
	case enum.TablePostgres:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Database,
			cfg.Port,
			cfg.SSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)

	case enum.TableMySQL:
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
		)
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)

	case enum.TableSQLite:
		// Database is a file path or a sqlite URI.
		db, err = gorm.Open(sqlite.Open(cfg.Database), gormConfig)

	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, mysql, sqlite)", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == enum.TableSQLite {
		// one writer at a time; sqlite locks the whole file anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(20)
	}

	return &Database{
		db,
		cfg,
	}, nil
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

func (db *Database) IsCloseConnection() bool {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return true
	}
	return sqlDB == nil || sqlDB.Stats().OpenConnections == 0
}
