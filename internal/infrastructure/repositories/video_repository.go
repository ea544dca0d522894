package repositories

import (
	"context"
	"errors"
	"fmt"

	"video-uploader/internal/domain/entities"
	domain "video-uploader/internal/domain/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *entities.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (*entities.Video, error) {
	videoID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrVideoNotFound
	}

	var video entities.Video
	if err := r.db.WithContext(ctx).First(&video, "video_id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return &video, nil
}

// Update writes every column of video (last write wins).
func (r *VideoRepository) Update(ctx context.Context, video *entities.Video) error {
	result := r.db.WithContext(ctx).Save(video)
	if result.Error != nil {
		return fmt.Errorf("update video %s: %w", video.VideoID, result.Error)
	}
	return nil
}

func (r *VideoRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	videoID, err := uuid.Parse(id)
	if err != nil {
		return false, domain.ErrVideoNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Video{}).
		Where("video_id = ? AND status = ?", videoID, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("transition video %s %s->%s: %w", id, from, to, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *VideoRepository) ListByStatus(ctx context.Context, status string) ([]*entities.Video, error) {
	var videos []*entities.Video
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("updated_at asc").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos with status %s: %w", status, err)
	}
	return videos, nil
}
