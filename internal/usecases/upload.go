package usecases

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"video-uploader/internal/domain/dto"
	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/mapper"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/pkg/metrics"
	"video-uploader/pkg/bufferpool"
	"video-uploader/pkg/constants"
	apperrors "video-uploader/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// enqueueTimeout bounds the hand-off to a full queue while the per-video lock is held.
const enqueueTimeout = 5 * time.Second

type UploadService interface {
	InitiateUpload(ctx context.Context, ownerID string, req *dto.InitiateUploadRequestDTO, preview io.Reader) (*dto.InitiateUploadResponse, error)
	ContinueUpload(ctx context.Context, ownerID string, req *dto.ContinueUploadRequestDTO, body io.Reader) (*dto.ContinueUploadResponse, error)
	GetUploadStatus(ctx context.Context, ownerID, videoID string) (*dto.UploadStatusResponse, error)
	GetVideo(ctx context.Context, ownerID, videoID string) (*dto.VideoDTO, error)
}

type uploadService struct {
	videos   repositories.VideoRepository
	staging  repositories.StagingRepository
	queue    repositories.JobQueue
	buffers  *bufferpool.Pool
	validate *validator.Validate
	locks    *keyedLock
	log      *zap.Logger

	enqueueTimeout time.Duration
}

func NewUploadService(
	videos repositories.VideoRepository,
	staging repositories.StagingRepository,
	queue repositories.JobQueue,
	buffers *bufferpool.Pool,
	log *zap.Logger,
) UploadService {
	if buffers == nil {
		buffers = bufferpool.New(bufferpool.DefaultSize)
	}
	return &uploadService{
		videos:   videos,
		staging:  staging,
		queue:    queue,
		buffers:  buffers,
		validate: validator.New(),
		locks:    newKeyedLock(),
		log:      logger.Named(log, "upload"),

		enqueueTimeout: enqueueTimeout,
	}
}

func (s *uploadService) InitiateUpload(ctx context.Context, ownerID string, req *dto.InitiateUploadRequestDTO, preview io.Reader) (*dto.InitiateUploadResponse, error) {
	if req == nil {
		return nil, apperrors.ErrInvalidRequest(errors.New("missing metadata"))
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ErrInvalidRequest(err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.ErrTitleRequired()
	}
	if !req.Provider.Valid() {
		return nil, apperrors.ErrInvalidRequest(errors.New("unknown provider"))
	}

	video := &entities.Video{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Provider:    req.Provider,
		Settings:    mapper.SettingsFromDTO(req.Settings),
	}
	if req.Duration > 0 {
		d := req.Duration
		video.Duration = &d
	}

	if req.Provider.IsRemote() {
		if strings.TrimSpace(req.ExternalID) == "" {
			return nil, apperrors.ErrExternalIDRequired()
		}
		video.VideoID = uuid.New()
		video.ExternalID = req.ExternalID
		video.Status = constants.StatusReady
		if err := s.videos.Create(ctx, video); err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		s.log.Info("remote video registered",
			zap.String("video_id", video.VideoID.String()),
			zap.Int("provider", int(req.Provider)))
		return &dto.InitiateUploadResponse{ID: video.VideoID.String(), Status: video.Status}, nil
	}

	if req.SizeBytes <= 0 {
		return nil, apperrors.ErrSizeRequired()
	}

	video.VideoID = uuid.New()
	id := video.VideoID.String()
	if err := s.staging.Create(id); err != nil {
		if errors.Is(err, repositories.ErrStagingExists) {
			return nil, apperrors.ErrStagingExists(id)
		}
		return nil, apperrors.ErrTransientIO(err)
	}

	if req.PreviewSize > 0 {
		if preview == nil {
			s.discardStaging(id)
			return nil, apperrors.ErrInvalidRequest(errors.New("preview size declared without preview body"))
		}
		if err := s.staging.WritePreview(id, preview, req.PreviewSize); err != nil {
			s.discardStaging(id)
			return nil, apperrors.ErrTransientIO(err)
		}
	}

	size := req.SizeBytes
	var received int64
	video.Size = &size
	video.UploadSize = &received
	video.Status = constants.StatusPending
	if err := s.videos.Create(ctx, video); err != nil {
		s.discardStaging(id)
		return nil, apperrors.ErrInternal(err)
	}

	s.log.Info("upload initiated",
		zap.String("video_id", id),
		zap.String("owner_id", ownerID),
		zap.Int64("size", size),
		zap.Int64("preview_size", req.PreviewSize))
	return &dto.InitiateUploadResponse{ID: id, Status: video.Status, Partial: true}, nil
}

func (s *uploadService) discardStaging(id string) {
	if err := s.staging.Remove(id); err != nil {
		s.log.Warn("failed to remove staging after aborted initiate", zap.String("video_id", id), zap.Error(err))
	}
}

func (s *uploadService) loadOwned(ctx context.Context, ownerID, videoID string) (*entities.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.ErrInternal(err)
	}
	if video.OwnerID != ownerID {
		return nil, apperrors.ErrNotFound(repositories.ErrVideoNotFound)
	}
	return video, nil
}

// ContinueUpload appends body to the staged original starting at
// req.FromOffset, which must equal the bytes already received. A body that
// ends early is not an error: progress is persisted and the upload stays
// resumable.
func (s *uploadService) ContinueUpload(ctx context.Context, ownerID string, req *dto.ContinueUploadRequestDTO, body io.Reader) (*dto.ContinueUploadResponse, error) {
	if req == nil || req.VideoID == "" {
		return nil, apperrors.ErrInvalidRequest(errors.New("missing video id"))
	}
	if req.FromOffset < 0 {
		return nil, apperrors.ErrInvalidOffset(errors.New("negative offset"))
	}

	video, err := s.loadOwned(ctx, ownerID, req.VideoID)
	if err != nil {
		return nil, err
	}
	if video.Provider.IsRemote() || video.Size == nil {
		return nil, apperrors.ErrNotFound(errors.New("video has no staged upload"))
	}
	if video.UploadComplete() {
		return nil, apperrors.ErrUploadComplete()
	}
	if !s.staging.OriginalExists(req.VideoID) {
		return nil, apperrors.ErrNotFound(repositories.ErrStagingNotFound)
	}

	if !s.locks.TryLock(req.VideoID) {
		metrics.UploadConflicts.Inc()
		return nil, apperrors.ErrUploadBusy(video.Received())
	}
	defer s.locks.Unlock(req.VideoID)

	// Re-read under the lock; a transfer that just finished may have moved the offset.
	video, err = s.loadOwned(ctx, ownerID, req.VideoID)
	if err != nil {
		return nil, err
	}
	if video.UploadComplete() {
		return nil, apperrors.ErrUploadComplete()
	}

	uploaded := video.Received()
	if req.FromOffset != uploaded {
		metrics.UploadConflicts.Inc()
		s.log.Info("offset mismatch",
			zap.String("video_id", req.VideoID),
			zap.Int64("from", req.FromOffset),
			zap.Int64("upload_size", uploaded))
		return nil, apperrors.ErrOffsetMismatch(uploaded)
	}

	written, writeErr := s.appendBody(req.VideoID, uploaded, video.DeclaredSize()-uploaded, body)
	if written == 0 && writeErr == nil {
		return s.continueResponse(video), nil
	}

	// Persist even if the client is gone; the bytes are already on disk.
	persistCtx := context.WithoutCancel(ctx)
	newSize := uploaded + written
	video.UploadSize = &newSize
	complete := video.UploadComplete()
	if complete && entities.CanTransition(video.Status, constants.StatusQueued) {
		video.Status = constants.StatusQueued
	}
	if err := s.videos.Update(persistCtx, video); err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	metrics.UploadBytes.Add(float64(written))

	if writeErr != nil {
		s.log.Error("staging write failed",
			zap.String("video_id", req.VideoID),
			zap.Int64("upload_size", newSize),
			zap.Error(writeErr))
		return nil, apperrors.ErrTransientIO(writeErr)
	}

	if complete && video.Status == constants.StatusQueued {
		metrics.UploadsCompleted.Inc()
		enqueueCtx, cancel := context.WithTimeout(persistCtx, s.enqueueTimeout)
		err := s.queue.Enqueue(enqueueCtx, repositories.TranscodeJob{VideoID: req.VideoID})
		cancel()
		if err != nil {
			// The record is queued; the worker re-enqueues queued records on start.
			s.log.Error("enqueue failed", zap.String("video_id", req.VideoID), zap.Error(err))
		} else {
			s.log.Info("upload complete, transcode queued", zap.String("video_id", req.VideoID))
		}
	}
	return s.continueResponse(video), nil
}

// appendBody copies at most limit bytes from body into the staged original at
// offset. It returns the number of bytes durably written. A read error or EOF
// ends the copy without an error; a write or sync failure is returned.
func (s *uploadService) appendBody(videoID string, offset, limit int64, body io.Reader) (int64, error) {
	if body == nil || limit <= 0 {
		return 0, nil
	}

	w, err := s.staging.OpenOriginal(videoID, offset)
	if err != nil {
		return 0, err
	}

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	var written int64
	var writeErr error
	for written < limit {
		chunk := *buf
		if remaining := limit - written; int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		n, readErr := body.Read(chunk)
		if n > 0 {
			if _, err := w.Write(chunk[:n]); err != nil {
				writeErr = err
				break
			}
			written += int64(n)
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				s.log.Info("upload stream ended early",
					zap.String("video_id", videoID),
					zap.Int64("written", written),
					zap.Error(readErr))
			}
			break
		}
	}

	syncErr := w.Sync()
	closeErr := w.Close()
	if syncErr != nil {
		// Nothing from this call is known to be durable.
		return 0, syncErr
	}
	if writeErr == nil {
		writeErr = closeErr
	}
	return written, writeErr
}

func (s *uploadService) continueResponse(video *entities.Video) *dto.ContinueUploadResponse {
	return &dto.ContinueUploadResponse{
		ID:         video.VideoID.String(),
		UploadSize: video.Received(),
		Size:       video.DeclaredSize(),
		Status:     video.Status,
		Complete:   video.UploadComplete(),
	}
}

func (s *uploadService) GetUploadStatus(ctx context.Context, ownerID, videoID string) (*dto.UploadStatusResponse, error) {
	video, err := s.loadOwned(ctx, ownerID, videoID)
	if err != nil {
		return nil, err
	}
	return &dto.UploadStatusResponse{
		ID:         video.VideoID.String(),
		UploadSize: video.Received(),
		Size:       video.DeclaredSize(),
		Status:     video.Status,
	}, nil
}

func (s *uploadService) GetVideo(ctx context.Context, ownerID, videoID string) (*dto.VideoDTO, error) {
	video, err := s.loadOwned(ctx, ownerID, videoID)
	if err != nil {
		return nil, err
	}
	out := mapper.VideoToDTO(video)
	return &out, nil
}
