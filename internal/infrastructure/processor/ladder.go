package processor

import (
	"errors"
	"math"
	"sort"
)

var ErrNoQualities = errors.New("no usable qualities in ladder")

type QualityInput struct {
	Height           int
	VideoBitrateKbps int
	AudioBitrateKbps *int
}

// QualityRung is one planned rendition. Index is its position in the ladder,
// highest resolution first, and doubles as the ffmpeg output stream index.
type QualityRung struct {
	Index            int
	Height           int
	Width            int
	VideoBitrateKbps int
	MaxBitrateKbps   int
	BufferSizeKbps   int
	AudioBitrateKbps int
}

// Plan turns configured qualities into an ordered ladder.
//
// Entries with a non-positive height or bitrate are dropped. Duplicate heights
// collapse to the last occurrence. The result is sorted by height descending.
func Plan(qualities []QualityInput, defaultAudioKbps int) ([]QualityRung, error) {
	byHeight := make(map[int]QualityInput, len(qualities))
	for _, q := range qualities {
		if q.Height <= 0 || q.VideoBitrateKbps <= 0 {
			continue
		}
		byHeight[q.Height] = q
	}
	if len(byHeight) == 0 {
		return nil, ErrNoQualities
	}

	heights := make([]int, 0, len(byHeight))
	for h := range byHeight {
		heights = append(heights, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	rungs := make([]QualityRung, 0, len(heights))
	for i, h := range heights {
		q := byHeight[h]
		audio := defaultAudioKbps
		if q.AudioBitrateKbps != nil && *q.AudioBitrateKbps > 0 {
			audio = *q.AudioBitrateKbps
		}
		rungs = append(rungs, QualityRung{
			Index:            i,
			Height:           h,
			Width:            WidthForHeight(h),
			VideoBitrateKbps: q.VideoBitrateKbps,
			MaxBitrateKbps:   int(math.Round(float64(q.VideoBitrateKbps) * 1.05)),
			BufferSizeKbps:   int(math.Round(float64(q.VideoBitrateKbps) * 1.5)),
			AudioBitrateKbps: audio,
		})
	}
	return rungs, nil
}
