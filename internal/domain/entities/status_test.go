package entities

import (
	"testing"

	"video-uploader/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleTransitions(t *testing.T) {
	assert.True(t, CanTransition(constants.StatusPending, constants.StatusQueued))
	assert.True(t, CanTransition(constants.StatusQueued, constants.StatusProcessing))
	assert.True(t, CanTransition(constants.StatusProcessing, constants.StatusReady))
	assert.True(t, CanTransition(constants.StatusProcessing, constants.StatusFailed))
	assert.True(t, CanTransition(constants.StatusProcessing, constants.StatusBlocked))

	assert.False(t, CanTransition(constants.StatusPending, constants.StatusProcessing))
	assert.False(t, CanTransition(constants.StatusQueued, constants.StatusReady))
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	all := []string{
		constants.StatusPending, constants.StatusQueued, constants.StatusProcessing,
		constants.StatusReady, constants.StatusBlocked, constants.StatusFailed,
	}
	for _, from := range []string{constants.StatusReady, constants.StatusBlocked, constants.StatusFailed} {
		assert.True(t, IsTerminal(from))
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestVideoUploadComplete(t *testing.T) {
	size := int64(10)
	uploaded := int64(4)
	v := &Video{Size: &size, UploadSize: &uploaded}
	assert.False(t, v.UploadComplete())

	uploaded = 10
	assert.True(t, v.UploadComplete())

	clone := v.Clone()
	*clone.UploadSize = 0
	assert.Equal(t, int64(10), v.Received())
}
