package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateVideos, downCreateVideos)
}

func upCreateVideos(ctx context.Context, tx *sql.Tx) error {
	createVideoTable := `
	CREATE TABLE videos (
		video_id UUID PRIMARY KEY,
		owner_id VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		size BIGINT,
		upload_size BIGINT,
		duration DOUBLE PRECISION,
		status VARCHAR(20) NOT NULL,
		provider SMALLINT NOT NULL DEFAULT 0,
		external_id VARCHAR(255),
		settings TEXT,
		preview_url VARCHAR(1024),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT upload_size_within_size CHECK (upload_size IS NULL OR size IS NULL OR upload_size <= size)
	);
	`
	if _, err := tx.ExecContext(ctx, createVideoTable); err != nil {
		return fmt.Errorf("could not create videos table: %w", err)
	}

	for _, stmt := range []string{
		`CREATE INDEX idx_videos_owner_id ON videos (owner_id);`,
		`CREATE INDEX idx_videos_status ON videos (status);`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not create videos index: %w", err)
		}
	}
	return nil
}

func downCreateVideos(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS videos;"); err != nil {
		return fmt.Errorf("could not drop table videos: %w", err)
	}
	return nil
}
