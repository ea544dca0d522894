package config

import (
	"fmt"
	"os"

	"video-uploader/internal/domain/entities"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TranscodeConfig mirrors the ladder file:
//
//	adaptive:
//	  qualities: [{height, videoBitrateKbps, audioBitrateKbps?}]
//	  video: {codec, preset}
//	  audio: {codec, defaultBitrateKbps}
//	thumbnailsCaptureIntervalSeconds: 5
type TranscodeConfig struct {
	Adaptive                         entities.AdaptiveSettings `yaml:"adaptive"`
	ThumbnailsCaptureIntervalSeconds float64                   `yaml:"thumbnailsCaptureIntervalSeconds" validate:"gt=0"`
	ThumbnailsPerSprite              int                       `yaml:"thumbnailsPerSprite" validate:"gt=0"`
	ThumbnailHeight                  int                       `yaml:"thumbnailHeight" validate:"gt=0"`
}

func DefaultTranscodeConfig() *TranscodeConfig {
	return &TranscodeConfig{
		Adaptive: entities.AdaptiveSettings{
			Qualities: []entities.QualitySetting{
				{Height: 1080, VideoBitrateKbps: 5000},
				{Height: 720, VideoBitrateKbps: 2800},
				{Height: 480, VideoBitrateKbps: 1400},
				{Height: 360, VideoBitrateKbps: 800},
			},
			Video: entities.VideoCodecSettings{Codec: "libx264", Preset: "veryfast"},
			Audio: entities.AudioCodecSettings{Codec: "aac", DefaultBitrateKbps: 128},
		},
		ThumbnailsCaptureIntervalSeconds: 5,
		ThumbnailsPerSprite:              100,
		ThumbnailHeight:                  90,
	}
}

// LoadTranscodeConfig reads the ladder YAML at path on top of the defaults.
// An empty path returns the defaults.
func LoadTranscodeConfig(path string) (*TranscodeConfig, error) {
	cfg := DefaultTranscodeConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcode config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse transcode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transcode config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *TranscodeConfig) Validate() error {
	return validator.New().Struct(c)
}
