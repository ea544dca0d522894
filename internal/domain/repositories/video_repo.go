package repositories

import (
	"context"
	"errors"

	"video-uploader/internal/domain/entities"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository interface {
	Create(ctx context.Context, video *entities.Video) error
	GetByID(ctx context.Context, id string) (*entities.Video, error)
	Update(ctx context.Context, video *entities.Video) error
	// TransitionStatus atomically moves id from one status to another and
	// reports whether this call performed the move.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	ListByStatus(ctx context.Context, status string) ([]*entities.Video, error)
}
