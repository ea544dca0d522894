package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// SettingsSchemaVersion is written into every serialized VideoSettings.
const SettingsSchemaVersion = 1

// QualitySetting is one configured rung before planning.
type QualitySetting struct {
	Height           int  `json:"height" yaml:"height" validate:"gt=0"`
	VideoBitrateKbps int  `json:"videoBitrateKbps" yaml:"videoBitrateKbps" validate:"gt=0"`
	AudioBitrateKbps *int `json:"audioBitrateKbps,omitempty" yaml:"audioBitrateKbps,omitempty" validate:"omitempty,gt=0"`
}

type VideoCodecSettings struct {
	Codec  string `json:"codec" yaml:"codec" validate:"required"`
	Preset string `json:"preset" yaml:"preset"`
}

type AudioCodecSettings struct {
	Codec              string `json:"codec" yaml:"codec" validate:"required"`
	DefaultBitrateKbps int    `json:"defaultBitrateKbps" yaml:"defaultBitrateKbps" validate:"gt=0"`
}

type AdaptiveSettings struct {
	Qualities []QualitySetting   `json:"qualities" yaml:"qualities" validate:"dive"`
	Video     VideoCodecSettings `json:"video" yaml:"video"`
	Audio     AudioCodecSettings `json:"audio" yaml:"audio"`
}

// VideoSettings is the per-video ladder override stored on the record.
// It is kept typed in memory and serialized as JSON only at the record store.
type VideoSettings struct {
	SchemaVersion int              `json:"schemaVersion"`
	Adaptive      AdaptiveSettings `json:"adaptive"`
}

func (s VideoSettings) Value() (driver.Value, error) {
	if s.SchemaVersion == 0 {
		s.SchemaVersion = SettingsSchemaVersion
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal video settings: %w", err)
	}
	return string(data), nil
}

func (s *VideoSettings) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = VideoSettings{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported settings column type %T", value)
	}
	return s.UnmarshalStored(data)
}

// UnmarshalStored decodes a stored settings blob. Blobs written before the
// schema version existed hold the adaptive block at the top level and are
// read as version 1.
func (s *VideoSettings) UnmarshalStored(data []byte) error {
	if len(data) == 0 {
		*s = VideoSettings{}
		return nil
	}

	var probe struct {
		SchemaVersion int             `json:"schemaVersion"`
		Adaptive      json.RawMessage `json:"adaptive"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode video settings: %w", err)
	}

	switch {
	case probe.SchemaVersion == 0 && probe.Adaptive == nil:
		var legacy AdaptiveSettings
		if err := json.Unmarshal(data, &legacy); err != nil {
			return fmt.Errorf("decode legacy video settings: %w", err)
		}
		*s = VideoSettings{SchemaVersion: 1, Adaptive: legacy}
	case probe.SchemaVersion <= SettingsSchemaVersion:
		var current VideoSettings
		if err := json.Unmarshal(data, &current); err != nil {
			return fmt.Errorf("decode video settings: %w", err)
		}
		if current.SchemaVersion == 0 {
			current.SchemaVersion = 1
		}
		*s = current
	default:
		return errors.New("video settings schema version is newer than this build")
	}
	return nil
}
