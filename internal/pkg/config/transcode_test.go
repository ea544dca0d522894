package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcode.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadTranscodeConfigDefaults(t *testing.T) {
	cfg, err := LoadTranscodeConfig("")
	require.NoError(t, err)
	assert.Len(t, cfg.Adaptive.Qualities, 4)
	assert.Equal(t, "libx264", cfg.Adaptive.Video.Codec)
	assert.Equal(t, 128, cfg.Adaptive.Audio.DefaultBitrateKbps)
	assert.Equal(t, 5.0, cfg.ThumbnailsCaptureIntervalSeconds)
}

func TestLoadTranscodeConfigOverridesLadder(t *testing.T) {
	path := writeFile(t, `
adaptive:
  qualities:
    - height: 720
      videoBitrateKbps: 2800
    - height: 1080
      videoBitrateKbps: 5000
      audioBitrateKbps: 192
  video:
    codec: libx265
    preset: medium
  audio:
    codec: aac
    defaultBitrateKbps: 96
thumbnailsCaptureIntervalSeconds: 10
`)

	cfg, err := LoadTranscodeConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Adaptive.Qualities, 2)
	assert.Equal(t, 720, cfg.Adaptive.Qualities[0].Height)
	require.NotNil(t, cfg.Adaptive.Qualities[1].AudioBitrateKbps)
	assert.Equal(t, 192, *cfg.Adaptive.Qualities[1].AudioBitrateKbps)
	assert.Equal(t, "libx265", cfg.Adaptive.Video.Codec)
	assert.Equal(t, 10.0, cfg.ThumbnailsCaptureIntervalSeconds)
	assert.Equal(t, 100, cfg.ThumbnailsPerSprite)
}

func TestLoadTranscodeConfigRejectsBadValues(t *testing.T) {
	path := writeFile(t, `
adaptive:
  qualities:
    - height: 0
      videoBitrateKbps: 2800
`)

	_, err := LoadTranscodeConfig(path)
	assert.Error(t, err)
}

func TestLoadTranscodeConfigMissingFile(t *testing.T) {
	_, err := LoadTranscodeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
