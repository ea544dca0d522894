package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"video-uploader/internal/pkg/logger"
	"video-uploader/pkg/constants"
	apperrors "video-uploader/pkg/errors"

	"go.uber.org/zap"
)

const hlsSegmentSeconds = 6

type EncodeRequest struct {
	InputPath  string
	OutputDir  string
	Rungs      []QualityRung
	HasAudio   bool
	VideoCodec string
	Preset     string
	AudioCodec string
}

// Encoder produces every HLS rendition plus the master playlist in a single
// ffmpeg run. Each rung lands in OutputDir/{height}/.
type Encoder struct {
	runner     Runner
	ffmpegPath string
	log        *zap.Logger
}

func NewEncoder(runner Runner, ffmpegPath string, log *zap.Logger) *Encoder {
	return &Encoder{runner: runner, ffmpegPath: ffmpegPath, log: logger.Named(log, "encoder")}
}

func (e *Encoder) Encode(ctx context.Context, req EncodeRequest) error {
	if len(req.Rungs) == 0 {
		e.log.Warn("no rungs to encode", zap.String("input", req.InputPath))
		return nil
	}

	for _, rung := range req.Rungs {
		if err := os.MkdirAll(filepath.Join(req.OutputDir, rungName(rung)), 0755); err != nil {
			return apperrors.ErrTransientIO(fmt.Errorf("create rendition dir: %w", err))
		}
	}

	res := e.runner.Run(ctx, e.ffmpegPath, BuildEncodeArgs(req)...)
	if !res.OK() {
		return apperrors.ErrProcessExecution("ffmpeg", res.Failure())
	}

	e.log.Info("renditions encoded",
		zap.String("input", req.InputPath),
		zap.Int("rungs", len(req.Rungs)),
		zap.Duration("took", res.Duration))
	return nil
}

// BuildEncodeArgs assembles the ffmpeg argument list for a multi-variant HLS encode.
func BuildEncodeArgs(req EncodeRequest) []string {
	audioCodec := req.AudioCodec
	if audioCodec == "" {
		audioCodec = "aac"
	}

	args := []string{"-y", "-i", req.InputPath}
	for range req.Rungs {
		args = append(args, "-map", "0:v:0")
		if req.HasAudio {
			args = append(args, "-map", "0:a:0")
		}
	}

	streamMap := make([]string, 0, len(req.Rungs))
	for _, rung := range req.Rungs {
		i := strconv.Itoa(rung.Index)
		args = append(args,
			"-filter:v:"+i, fmt.Sprintf("scale=%dx%d", rung.Width, rung.Height),
			"-c:v:"+i, req.VideoCodec,
			"-b:v:"+i, kbps(rung.VideoBitrateKbps),
			"-maxrate:v:"+i, kbps(rung.MaxBitrateKbps),
			"-bufsize:v:"+i, kbps(rung.BufferSizeKbps),
		)
		entry := "v:" + i
		if req.HasAudio {
			args = append(args,
				"-c:a:"+i, audioCodec,
				"-b:a:"+i, kbps(rung.AudioBitrateKbps),
			)
			entry += ",a:" + i
		}
		streamMap = append(streamMap, entry+",name:"+rungName(rung))
	}

	if req.Preset != "" {
		args = append(args, "-preset", req.Preset)
	}

	args = append(args,
		"-f", "hls",
		"-hls_time", strconv.Itoa(hlsSegmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(req.OutputDir, "%v", "segment_%03d.ts"),
		"-master_pl_name", constants.MasterPlaylistName,
		"-var_stream_map", strings.Join(streamMap, " "),
		filepath.Join(req.OutputDir, "%v", constants.RungPlaylistName),
	)
	return args
}

// RungPlaylistPath is the playlist location of a rung relative to the output dir.
func RungPlaylistPath(rung QualityRung) string {
	return rungName(rung) + "/" + constants.RungPlaylistName
}

func rungName(rung QualityRung) string {
	return strconv.Itoa(rung.Height)
}

func kbps(v int) string {
	return strconv.Itoa(v) + "k"
}
