package usecases

import (
	"context"
	"errors"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/logger"
	apperrors "video-uploader/pkg/errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CleanupService interface {
	// CleanupStaging removes the staged files of one of the owner's videos
	// once it has reached a terminal status.
	CleanupStaging(ctx context.Context, ownerID, videoID string) error
	// CleanupOldStaging removes staging directories older than maxAge whose
	// record is missing or terminal. A non-positive maxAge disables the sweep.
	CleanupOldStaging(ctx context.Context, maxAge time.Duration) (int, error)
	// Schedule registers the sweep on c using a six-field cron spec.
	Schedule(c *cron.Cron, spec string, maxAge time.Duration) error
}

type cleanupService struct {
	staging repositories.StagingRepository
	videos  repositories.VideoRepository
	now     func() time.Time
	log     *zap.Logger
}

func NewCleanupService(staging repositories.StagingRepository, videos repositories.VideoRepository, log *zap.Logger) CleanupService {
	return &cleanupService{
		staging: staging,
		videos:  videos,
		now:     time.Now,
		log:     logger.Named(log, "cleanup"),
	}
}

func (s *cleanupService) CleanupStaging(ctx context.Context, ownerID, videoID string) error {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.ErrInternal(err)
	}
	if video.OwnerID != ownerID {
		return apperrors.ErrNotFound(repositories.ErrVideoNotFound)
	}
	if !entities.IsTerminal(video.Status) {
		return apperrors.ErrStagingInUse()
	}
	if err := s.staging.Remove(videoID); err != nil {
		return apperrors.ErrCannotRemove(err)
	}
	return nil
}

func (s *cleanupService) CleanupOldStaging(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := s.staging.List()
	if err != nil {
		return 0, apperrors.ErrCannotStat(err)
	}

	now := s.now()
	removed := 0
	for _, entry := range entries {
		if now.Sub(entry.ModTime) <= maxAge {
			continue
		}

		video, err := s.videos.GetByID(ctx, entry.VideoID)
		switch {
		case errors.Is(err, repositories.ErrVideoNotFound):
		case err != nil:
			s.log.Warn("skipping staging entry, record lookup failed",
				zap.String("video_id", entry.VideoID), zap.Error(err))
			continue
		case !entities.IsTerminal(video.Status):
			continue
		}

		if err := s.staging.Remove(entry.VideoID); err != nil {
			s.log.Error("failed to remove orphaned staging",
				zap.String("video_id", entry.VideoID), zap.Error(err))
			continue
		}
		removed++
		s.log.Info("removed orphaned staging",
			zap.String("video_id", entry.VideoID),
			zap.Time("modified", entry.ModTime))
	}
	return removed, nil
}

func (s *cleanupService) Schedule(c *cron.Cron, spec string, maxAge time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		if _, err := s.CleanupOldStaging(context.Background(), maxAge); err != nil {
			s.log.Error("error cleaning up old staging", zap.Error(err))
		}
	})
	return err
}
