package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"video-uploader/internal/domain/entities"
	domain "video-uploader/internal/domain/repositories"

	"github.com/google/uuid"
)

// InMemoryVideoRepository keeps records in a map. Callers always receive copies.
type InMemoryVideoRepository struct {
	mu   sync.RWMutex
	data map[string]*entities.Video
}

func NewInMemoryVideoRepository() *InMemoryVideoRepository {
	return &InMemoryVideoRepository{
		data: make(map[string]*entities.Video),
	}
}

func (r *InMemoryVideoRepository) Create(_ context.Context, video *entities.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if video.VideoID == uuid.Nil {
		video.VideoID = uuid.New()
	}
	id := video.VideoID.String()
	if _, exists := r.data[id]; exists {
		return fmt.Errorf("video %s already exists", id)
	}
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now
	r.data[id] = video.Clone()
	return nil
}

func (r *InMemoryVideoRepository) GetByID(_ context.Context, id string) (*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	video, exists := r.data[id]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}
	return video.Clone(), nil
}

func (r *InMemoryVideoRepository) Update(_ context.Context, video *entities.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := video.VideoID.String()
	if _, exists := r.data[id]; !exists {
		return domain.ErrVideoNotFound
	}
	video.UpdatedAt = time.Now()
	r.data[id] = video.Clone()
	return nil
}

func (r *InMemoryVideoRepository) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, exists := r.data[id]
	if !exists {
		return false, domain.ErrVideoNotFound
	}
	if video.Status != from {
		return false, nil
	}
	video.Status = to
	video.UpdatedAt = time.Now()
	return true, nil
}

func (r *InMemoryVideoRepository) ListByStatus(_ context.Context, status string) ([]*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Video, 0)
	for _, video := range r.data {
		if video.Status == status {
			result = append(result, video.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	return result, nil
}
