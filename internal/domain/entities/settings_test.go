package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsValueWritesSchemaVersion(t *testing.T) {
	audio := 96
	s := VideoSettings{Adaptive: AdaptiveSettings{
		Qualities: []QualitySetting{{Height: 720, VideoBitrateKbps: 2800, AudioBitrateKbps: &audio}},
	}}

	v, err := s.Value()
	require.NoError(t, err)
	assert.Contains(t, v.(string), `"schemaVersion":1`)

	var decoded VideoSettings
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, 1, decoded.SchemaVersion)
	require.Len(t, decoded.Adaptive.Qualities, 1)
	assert.Equal(t, 96, *decoded.Adaptive.Qualities[0].AudioBitrateKbps)
}

func TestSettingsScanLegacyBlob(t *testing.T) {
	legacy := []byte(`{"qualities":[{"height":1080,"videoBitrateKbps":5000}],"video":{"codec":"libx264","preset":"fast"}}`)

	var s VideoSettings
	require.NoError(t, s.Scan(legacy))
	assert.Equal(t, 1, s.SchemaVersion)
	assert.Equal(t, "libx264", s.Adaptive.Video.Codec)
	require.Len(t, s.Adaptive.Qualities, 1)
	assert.Equal(t, 1080, s.Adaptive.Qualities[0].Height)
}

func TestSettingsScanRejectsFutureVersion(t *testing.T) {
	var s VideoSettings
	err := s.Scan(`{"schemaVersion":99,"adaptive":{}}`)
	assert.Error(t, err)
}

func TestSettingsScanNil(t *testing.T) {
	s := VideoSettings{SchemaVersion: 1}
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, VideoSettings{}, s)
}
