package processor

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	apperrors "video-uploader/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const streamsJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2}
  ]
}`

func TestProber_Probe(t *testing.T) {
	runner := &fakeRunner{fn: func(n int, _ string, _ []string) Result {
		if n == 0 {
			return Result{Stdout: []byte("95.000000\n")}
		}
		return Result{Stdout: []byte(streamsJSON)}
	}}

	res, err := NewProber(runner, "/opt/ffprobe", nil).Probe(context.Background(), "in.mp4")
	require.NoError(t, err)

	assert.Equal(t, 95.0, res.Duration)
	require.Len(t, res.VideoStreams, 1)
	assert.Equal(t, VideoStream{Index: 0, Width: 1920, Height: 1080, Codec: "h264", FrameRate: 30000.0 / 1001.0}, res.VideoStreams[0])
	require.Len(t, res.AudioStreams, 1)
	assert.Equal(t, AudioStream{Index: 1, Codec: "aac", SampleRate: 48000, Channels: 2}, res.AudioStreams[0])
	assert.True(t, res.HasAudio())

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/opt/ffprobe", calls[0].Name)
	assert.Equal(t, "format=duration", argAfter(calls[0].Args, "-show_entries"))
	assert.Equal(t, "json", argAfter(calls[1].Args, "-of"))
}

func TestProber_StreamQueryIsBestEffort(t *testing.T) {
	runner := &fakeRunner{fn: func(n int, _ string, _ []string) Result {
		if n == 0 {
			return Result{Stdout: []byte("12.5")}
		}
		return Result{ExitCode: 1, Stderr: []byte("boom")}
	}}

	res, err := NewProber(runner, "ffprobe", nil).Probe(context.Background(), "in.mp4")
	require.NoError(t, err)
	assert.Equal(t, 12.5, res.Duration)
	assert.Empty(t, res.VideoStreams)
	assert.False(t, res.HasAudio())
}

func TestProber_MalformedFieldsAreZero(t *testing.T) {
	runner := &fakeRunner{fn: func(n int, _ string, _ []string) Result {
		if n == 0 {
			return Result{Stdout: []byte("N/A")}
		}
		return Result{Stdout: []byte(`{"streams":[{"codec_type":"video","width":"wide","r_frame_rate":"x/y"}]}`)}
	}}

	res, err := NewProber(runner, "ffprobe", nil).Probe(context.Background(), "in.mp4")
	require.NoError(t, err)
	assert.Zero(t, res.Duration)
	require.Len(t, res.VideoStreams, 1)
	assert.Zero(t, res.VideoStreams[0].Width)
	assert.Zero(t, res.VideoStreams[0].FrameRate)
}

func TestProber_DurationQueryFailure(t *testing.T) {
	runner := &fakeRunner{fn: func(int, string, []string) Result {
		return Result{ExitCode: -1, Err: exec.ErrNotFound}
	}}

	_, err := NewProber(runner, "missing-ffprobe", nil).Probe(context.Background(), "in.mp4")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindProcessExecution))
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Len(t, runner.Calls(), 1)
}

func TestParseFrameRate(t *testing.T) {
	cases := map[string]float64{
		"30/1":  30,
		"25":    25,
		"0/0":   0,
		"24/0":  0,
		"":      0,
		"abc":   0,
		"1/abc": 0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, ParseFrameRate(in), 1e-9, in)
	}
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 0.001)
}
