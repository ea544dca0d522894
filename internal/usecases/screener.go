package usecases

import (
	"context"
	"fmt"

	"video-uploader/internal/infrastructure/processor"
	apperrors "video-uploader/pkg/errors"
)

// PolicyScreener blocks uploads that break simple publishing rules.
// Zero values disable the corresponding rule.
type PolicyScreener struct {
	MaxDurationSeconds float64
	RequireVideoStream bool
}

func (p PolicyScreener) Screen(_ context.Context, _ string, _ string, probe *processor.ProbeResult) error {
	if probe == nil {
		return nil
	}
	if p.RequireVideoStream && len(probe.VideoStreams) == 0 {
		return apperrors.ErrContentBlocked("no video stream")
	}
	if p.MaxDurationSeconds > 0 && probe.Duration > p.MaxDurationSeconds {
		return apperrors.ErrContentBlocked(fmt.Sprintf("duration %.0fs exceeds limit of %.0fs", probe.Duration, p.MaxDurationSeconds))
	}
	return nil
}
