package processor

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"video-uploader/internal/pkg/logger"
	apperrors "video-uploader/pkg/errors"

	"go.uber.org/zap"
)

type VideoStream struct {
	Index     int     `json:"index"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Codec     string  `json:"codec"`
	FrameRate float64 `json:"frameRate"`
}

type AudioStream struct {
	Index      int    `json:"index"`
	Codec      string `json:"codec"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

type ProbeResult struct {
	Duration     float64       `json:"duration"`
	VideoStreams []VideoStream `json:"videoStreams"`
	AudioStreams []AudioStream `json:"audioStreams"`
}

func (p *ProbeResult) HasAudio() bool {
	return p != nil && len(p.AudioStreams) > 0
}

// Prober reads container duration and stream metadata with ffprobe.
//
// Probing is best-effort: only a missing executable or a non-zero exit on the
// duration query fails the probe. Unparseable fields are left at zero and the
// stream query may fail without failing the probe.
type Prober struct {
	runner      Runner
	ffprobePath string
	log         *zap.Logger
}

func NewProber(runner Runner, ffprobePath string, log *zap.Logger) *Prober {
	return &Prober{runner: runner, ffprobePath: ffprobePath, log: logger.Named(log, "prober")}
}

func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	res := p.runner.Run(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if !res.OK() {
		return nil, apperrors.ErrProcessExecution("ffprobe", res.Failure())
	}

	result := &ProbeResult{}
	raw := strings.TrimSpace(string(res.Stdout))
	if duration, err := strconv.ParseFloat(raw, 64); err == nil && duration > 0 {
		result.Duration = duration
	} else {
		p.log.Warn("duration not parseable", zap.String("path", path), zap.String("value", raw))
	}

	res = p.runner.Run(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "stream=index,codec_type,codec_name,width,height,r_frame_rate,sample_rate,channels",
		"-of", "json",
		path,
	)
	if !res.OK() {
		p.log.Warn("stream query failed, continuing without stream metadata",
			zap.String("path", path), zap.Error(res.Failure()))
		return result, nil
	}

	var payload struct {
		Streams []map[string]any `json:"streams"`
	}
	if err := json.Unmarshal(res.Stdout, &payload); err != nil {
		p.log.Warn("stream metadata not parseable", zap.String("path", path), zap.Error(err))
		return result, nil
	}

	for _, stream := range payload.Streams {
		switch stringField(stream, "codec_type") {
		case "video":
			result.VideoStreams = append(result.VideoStreams, VideoStream{
				Index:     intField(stream, "index"),
				Width:     intField(stream, "width"),
				Height:    intField(stream, "height"),
				Codec:     stringField(stream, "codec_name"),
				FrameRate: ParseFrameRate(stringField(stream, "r_frame_rate")),
			})
		case "audio":
			result.AudioStreams = append(result.AudioStreams, AudioStream{
				Index:      intField(stream, "index"),
				Codec:      stringField(stream, "codec_name"),
				SampleRate: intField(stream, "sample_rate"),
				Channels:   intField(stream, "channels"),
			})
		}
	}
	return result, nil
}

// ParseFrameRate turns "num/den" (or a plain number) into frames per second.
// Anything unparseable, including a zero denominator, yields 0.
func ParseFrameRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	if !found {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return f
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// intField accepts both JSON numbers and numeric strings (ffprobe emits sample_rate as a string).
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
