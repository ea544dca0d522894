package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/infrastructure/processor"
	"video-uploader/internal/pkg/config"
	"video-uploader/internal/pkg/fileutils"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/pkg/metrics"
	"video-uploader/pkg/constants"
	apperrors "video-uploader/pkg/errors"

	"go.uber.org/zap"
)

type MediaProber interface {
	Probe(ctx context.Context, path string) (*processor.ProbeResult, error)
}

type MosaicBuilder interface {
	Generate(ctx context.Context, inputPath, outputDir string, duration float64, opts processor.MosaicOptions) (*processor.MosaicResult, error)
}

type RenditionEncoder interface {
	Encode(ctx context.Context, req processor.EncodeRequest) error
}

type ArtifactPublisher interface {
	Publish(ctx context.Context, workDir, keyPrefix string) error
	Verify(ctx context.Context, keyPrefix string, rels []string) error
	Retract(ctx context.Context, workDir, keyPrefix string) error
}

// ContentScreener inspects a probed upload before encoding. Returning an
// error of kind KindContentPolicy blocks the video; any other error fails it.
type ContentScreener interface {
	Screen(ctx context.Context, videoID, inputPath string, probe *processor.ProbeResult) error
}

type TranscodeService interface {
	Handle(ctx context.Context, job repositories.TranscodeJob) error
	// RecoverQueued re-enqueues every record left in the queued state.
	RecoverQueued(ctx context.Context) (int, error)
}

type TranscodeDeps struct {
	Videos    repositories.VideoRepository
	Staging   repositories.StagingRepository
	Queue     repositories.JobQueue
	Store     repositories.BlobStore
	Prober    MediaProber
	Mosaic    MosaicBuilder
	Encoder   RenditionEncoder
	Publisher ArtifactPublisher
	Screener  ContentScreener
}

type transcodeService struct {
	TranscodeDeps
	cfg     config.TranscodeConfig
	workDir string
	log     *zap.Logger
}

func NewTranscodeService(deps TranscodeDeps, cfg config.TranscodeConfig, workDir string, log *zap.Logger) TranscodeService {
	return &transcodeService{
		TranscodeDeps: deps,
		cfg:           cfg,
		workDir:       workDir,
		log:           logger.Named(log, "transcode"),
	}
}

func (s *transcodeService) RecoverQueued(ctx context.Context) (int, error) {
	videos, err := s.Videos.ListByStatus(ctx, constants.StatusQueued)
	if err != nil {
		return 0, fmt.Errorf("list queued videos: %w", err)
	}
	for i, video := range videos {
		if err := s.Queue.Enqueue(ctx, repositories.TranscodeJob{VideoID: video.VideoID.String()}); err != nil {
			return i, fmt.Errorf("re-enqueue %s: %w", video.VideoID, err)
		}
	}
	if len(videos) > 0 {
		s.log.Info("re-enqueued queued videos", zap.Int("count", len(videos)))
	}
	return len(videos), nil
}

// Handle claims a queued video and drives it to Ready, Blocked or Failed.
// A job whose video is not in the queued state is skipped.
func (s *transcodeService) Handle(ctx context.Context, job repositories.TranscodeJob) error {
	start := time.Now()
	log := s.log.With(zap.String("video_id", job.VideoID))

	claimed, err := s.Videos.TransitionStatus(ctx, job.VideoID, constants.StatusQueued, constants.StatusProcessing)
	if err != nil {
		return fmt.Errorf("claim %s: %w", job.VideoID, err)
	}
	if !claimed {
		log.Info("video not queued, skipping job")
		return nil
	}

	video, err := s.Videos.GetByID(ctx, job.VideoID)
	if err != nil {
		if _, markErr := s.Videos.TransitionStatus(context.WithoutCancel(ctx), job.VideoID, constants.StatusProcessing, constants.StatusFailed); markErr != nil {
			log.Error("failed to mark video failed", zap.Error(markErr))
		}
		return fmt.Errorf("load %s: %w", job.VideoID, err)
	}

	runErr := s.run(ctx, video, log)
	video.Status = terminalStatus(runErr)

	persistCtx := context.WithoutCancel(ctx)
	if err := s.Videos.Update(persistCtx, video); err != nil {
		log.Error("failed to persist terminal status", zap.String("status", video.Status), zap.Error(err))
		return errors.Join(runErr, err)
	}
	if err := s.Staging.Remove(job.VideoID); err != nil {
		log.Warn("failed to remove staging", zap.Error(err))
	}

	metrics.TranscodeJobs.WithLabelValues(video.Status).Inc()
	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())

	switch video.Status {
	case constants.StatusReady:
		log.Info("video ready", zap.Duration("took", time.Since(start)))
		return nil
	case constants.StatusBlocked:
		log.Warn("video blocked by content policy", zap.Error(runErr))
		return nil
	default:
		log.Error("transcode failed", zap.Error(runErr))
		return runErr
	}
}

func terminalStatus(err error) string {
	switch {
	case err == nil:
		return constants.StatusReady
	case apperrors.IsKind(err, apperrors.KindContentPolicy):
		return constants.StatusBlocked
	default:
		return constants.StatusFailed
	}
}

func (s *transcodeService) run(ctx context.Context, video *entities.Video, log *zap.Logger) error {
	id := video.VideoID.String()
	input := s.Staging.OriginalPath(id)

	workDir, err := os.MkdirTemp(s.workDir, "transcode-"+id+"-")
	if err != nil {
		return apperrors.ErrTransientIO(fmt.Errorf("create work dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("failed to remove work dir", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	probe, err := s.Prober.Probe(ctx, input)
	if err != nil {
		return err
	}
	duration := probe.Duration
	if duration > 0 {
		video.Duration = &duration
	} else if video.Duration != nil {
		duration = *video.Duration
	}
	log.Info("probed",
		zap.Float64("duration", duration),
		zap.Int("video_streams", len(probe.VideoStreams)),
		zap.Int("audio_streams", len(probe.AudioStreams)))

	if s.Screener != nil {
		if err := s.Screener.Screen(ctx, id, input, probe); err != nil {
			return err
		}
	}

	adaptive := s.adaptiveFor(video)
	rungs, err := processor.Plan(qualityInputs(adaptive.Qualities), adaptive.Audio.DefaultBitrateKbps)
	if err != nil {
		if !errors.Is(err, processor.ErrNoQualities) {
			return apperrors.ErrInternal(err)
		}
		log.Warn("no adaptive renditions configured, skipping encode")
	}

	mosaic, err := s.Mosaic.Generate(ctx, input, workDir, duration, processor.MosaicOptions{
		IntervalSeconds:    s.cfg.ThumbnailsCaptureIntervalSeconds,
		MaxThumbsPerSprite: s.cfg.ThumbnailsPerSprite,
		ThumbHeight:        s.cfg.ThumbnailHeight,
	})
	if err != nil {
		return err
	}

	if err := s.Encoder.Encode(ctx, processor.EncodeRequest{
		InputPath:  input,
		OutputDir:  workDir,
		Rungs:      rungs,
		HasAudio:   probe.HasAudio(),
		VideoCodec: adaptive.Video.Codec,
		Preset:     adaptive.Video.Preset,
		AudioCodec: adaptive.Audio.Codec,
	}); err != nil {
		return err
	}

	previewPath, hasPreview := s.Staging.PreviewPath(id)
	if hasPreview {
		if err := fileutils.LinkOrCopy(previewPath, filepath.Join(workDir, constants.PreviewFileName)); err != nil {
			return apperrors.ErrTransientIO(fmt.Errorf("stage preview: %w", err))
		}
	}

	prefix := path.Join(constants.VideoKeyPrefix, id)
	if err := s.Publisher.Publish(ctx, workDir, prefix); err != nil {
		s.retract(ctx, workDir, prefix, log)
		return err
	}

	var required []string
	if len(rungs) > 0 {
		required = append(required, constants.MasterPlaylistName)
		for _, rung := range rungs {
			required = append(required, processor.RungPlaylistPath(rung))
		}
	}
	if err := s.Publisher.Verify(ctx, prefix, required); err != nil {
		s.retract(ctx, workDir, prefix, log)
		return err
	}

	switch {
	case hasPreview:
		video.PreviewURL = s.Store.URL(path.Join(prefix, constants.PreviewFileName))
	case mosaic != nil && len(mosaic.Plan.Sprites) > 0:
		video.PreviewURL = s.Store.URL(path.Join(prefix, mosaic.Plan.Sprites[0].FileName()))
	}
	return nil
}

// retract removes whatever part of a failed publish reached the blob store.
func (s *transcodeService) retract(ctx context.Context, workDir, prefix string, log *zap.Logger) {
	if err := s.Publisher.Retract(context.WithoutCancel(ctx), workDir, prefix); err != nil {
		log.Error("failed to retract partial publish", zap.String("prefix", prefix), zap.Error(err))
	}
}

// adaptiveFor merges a per-video ladder override onto the configured ladder.
func (s *transcodeService) adaptiveFor(video *entities.Video) entities.AdaptiveSettings {
	adaptive := s.cfg.Adaptive
	if video.Settings == nil {
		return adaptive
	}
	override := video.Settings.Adaptive
	if len(override.Qualities) > 0 {
		adaptive.Qualities = override.Qualities
	}
	if override.Video.Codec != "" {
		adaptive.Video = override.Video
	}
	if override.Audio.Codec != "" {
		adaptive.Audio.Codec = override.Audio.Codec
	}
	if override.Audio.DefaultBitrateKbps > 0 {
		adaptive.Audio.DefaultBitrateKbps = override.Audio.DefaultBitrateKbps
	}
	return adaptive
}

func qualityInputs(qualities []entities.QualitySetting) []processor.QualityInput {
	out := make([]processor.QualityInput, 0, len(qualities))
	for _, q := range qualities {
		out = append(out, processor.QualityInput{
			Height:           q.Height,
			VideoBitrateKbps: q.VideoBitrateKbps,
			AudioBitrateKbps: q.AudioBitrateKbps,
		})
	}
	return out
}
