package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "video-uploader/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRungs(t *testing.T) []QualityRung {
	t.Helper()
	rungs, err := Plan([]QualityInput{
		{Height: 720, VideoBitrateKbps: 2800},
		{Height: 1080, VideoBitrateKbps: 5000},
	}, 128)
	require.NoError(t, err)
	return rungs
}

func TestBuildEncodeArgs_WithAudio(t *testing.T) {
	args := BuildEncodeArgs(EncodeRequest{
		InputPath:  "in.mp4",
		OutputDir:  "/work",
		Rungs:      testRungs(t),
		HasAudio:   true,
		VideoCodec: "libx264",
		Preset:     "veryfast",
		AudioCodec: "aac",
	})
	joined := strings.Join(args, " ")

	assert.Equal(t, 4, strings.Count(joined, "-map "))
	assert.Equal(t, "scale=1920x1080", argAfter(args, "-filter:v:0"))
	assert.Equal(t, "scale=1280x720", argAfter(args, "-filter:v:1"))
	assert.Equal(t, "5000k", argAfter(args, "-b:v:0"))
	assert.Equal(t, "5250k", argAfter(args, "-maxrate:v:0"))
	assert.Equal(t, "7500k", argAfter(args, "-bufsize:v:0"))
	assert.Equal(t, "128k", argAfter(args, "-b:a:1"))
	assert.Equal(t, "veryfast", argAfter(args, "-preset"))
	assert.Equal(t, "6", argAfter(args, "-hls_time"))
	assert.Equal(t, "master.m3u8", argAfter(args, "-master_pl_name"))
	assert.Equal(t, "v:0,a:0,name:1080 v:1,a:1,name:720", argAfter(args, "-var_stream_map"))
	assert.Equal(t, filepath.Join("/work", "%v", "segment_%03d.ts"), argAfter(args, "-hls_segment_filename"))
	assert.Equal(t, filepath.Join("/work", "%v", "playlist.m3u8"), args[len(args)-1])
}

func TestBuildEncodeArgs_VideoOnly(t *testing.T) {
	args := BuildEncodeArgs(EncodeRequest{
		InputPath:  "in.mp4",
		OutputDir:  "/work",
		Rungs:      testRungs(t),
		VideoCodec: "libx264",
	})
	joined := strings.Join(args, " ")

	assert.NotContains(t, joined, "0:a:0")
	assert.NotContains(t, joined, "-c:a:")
	assert.NotContains(t, joined, "-preset")
	assert.Equal(t, "v:0,name:1080 v:1,name:720", argAfter(args, "-var_stream_map"))
}

func TestEncoder_EmptyRungsIsNoop(t *testing.T) {
	runner := &fakeRunner{}
	err := NewEncoder(runner, "ffmpeg", nil).Encode(context.Background(), EncodeRequest{InputPath: "in.mp4", OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, runner.Calls())
}

func TestEncoder_CreatesRenditionDirs(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{}
	err := NewEncoder(runner, "/opt/ffmpeg", nil).Encode(context.Background(), EncodeRequest{
		InputPath: "in.mp4", OutputDir: out, Rungs: testRungs(t), VideoCodec: "libx264",
	})
	require.NoError(t, err)

	require.Len(t, runner.Calls(), 1)
	assert.Equal(t, "/opt/ffmpeg", runner.Calls()[0].Name)
	for _, dir := range []string{"1080", "720"} {
		info, err := os.Stat(filepath.Join(out, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEncoder_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{fn: func(int, string, []string) Result {
		return Result{ExitCode: 1, Stderr: []byte("Unknown encoder 'libx265'")}
	}}
	err := NewEncoder(runner, "ffmpeg", nil).Encode(context.Background(), EncodeRequest{
		InputPath: "in.mp4", OutputDir: t.TempDir(), Rungs: testRungs(t), VideoCodec: "libx265",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindProcessExecution))
	assert.Contains(t, err.Error(), "libx265")
}

func TestRungPlaylistPath(t *testing.T) {
	assert.Equal(t, "720/playlist.m3u8", RungPlaylistPath(QualityRung{Height: 720}))
}
