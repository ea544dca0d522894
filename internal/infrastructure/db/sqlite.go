package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewSqliteDB opens a single-file database for local runs and applies the
// schema with AutoMigrate.
func NewSqliteDB(path string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(database); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return database, nil
}
