package db

import (
	"context"
	"fmt"

	"video-uploader/internal/domain/entities"
	_ "video-uploader/migrations"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate applies the registered goose migrations to a postgres database.
func Migrate(ctx context.Context, database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// AutoMigrate creates the schema from the entities. The goose migrations
// target postgres, so sqlite databases use this instead.
func AutoMigrate(database *gorm.DB) error {
	return database.AutoMigrate(&entities.Video{})
}
