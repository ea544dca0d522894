package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_DedupAndSort(t *testing.T) {
	rungs, err := Plan([]QualityInput{
		{Height: 720, VideoBitrateKbps: 2800},
		{Height: 1080, VideoBitrateKbps: 5000},
		{Height: 1080, VideoBitrateKbps: 4800},
	}, 128)
	require.NoError(t, err)
	require.Len(t, rungs, 2)

	assert.Equal(t, QualityRung{
		Index: 0, Height: 1080, Width: 1920,
		VideoBitrateKbps: 4800, MaxBitrateKbps: 5040, BufferSizeKbps: 7200,
		AudioBitrateKbps: 128,
	}, rungs[0])
	assert.Equal(t, 1, rungs[1].Index)
	assert.Equal(t, 720, rungs[1].Height)
	assert.Equal(t, 1280, rungs[1].Width)
	assert.Equal(t, 2800, rungs[1].VideoBitrateKbps)
	assert.Equal(t, 2940, rungs[1].MaxBitrateKbps)
	assert.Equal(t, 4200, rungs[1].BufferSizeKbps)
}

func TestPlan_DropsInvalidEntries(t *testing.T) {
	rungs, err := Plan([]QualityInput{
		{Height: 0, VideoBitrateKbps: 1000},
		{Height: 480, VideoBitrateKbps: 0},
		{Height: -1, VideoBitrateKbps: -1},
		{Height: 360, VideoBitrateKbps: 800},
	}, 96)
	require.NoError(t, err)
	require.Len(t, rungs, 1)
	assert.Equal(t, 360, rungs[0].Height)
	assert.Equal(t, 0, rungs[0].Index)
}

func TestPlan_Empty(t *testing.T) {
	_, err := Plan(nil, 128)
	assert.ErrorIs(t, err, ErrNoQualities)

	_, err = Plan([]QualityInput{{Height: 0, VideoBitrateKbps: 0}}, 128)
	assert.ErrorIs(t, err, ErrNoQualities)
}

func TestPlan_AudioOverride(t *testing.T) {
	audio := 192
	rungs, err := Plan([]QualityInput{
		{Height: 1080, VideoBitrateKbps: 5000, AudioBitrateKbps: &audio},
		{Height: 480, VideoBitrateKbps: 1400},
	}, 128)
	require.NoError(t, err)
	assert.Equal(t, 192, rungs[0].AudioBitrateKbps)
	assert.Equal(t, 128, rungs[1].AudioBitrateKbps)
}

func TestWidthForHeight(t *testing.T) {
	cases := map[int]int{
		2160: 3840,
		1080: 1920,
		720:  1280,
		480:  854,
		144:  256,
		900:  1600,
		100:  178,
		50:   90,
	}
	for height, want := range cases {
		assert.Equal(t, want, WidthForHeight(height), "height %d", height)
	}
}
