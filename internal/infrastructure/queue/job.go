package queue

import (
	"encoding/json"
	"fmt"

	"video-uploader/internal/domain/repositories"
)

func SerializeJob(job repositories.TranscodeJob) (string, error) {
	bytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	return string(bytes), nil
}

func DeserializeJob(data string) (repositories.TranscodeJob, error) {
	var job repositories.TranscodeJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return job, fmt.Errorf("failed to deserialize job: %w", err)
	}
	if job.VideoID == "" {
		return job, fmt.Errorf("failed to deserialize job: missing videoId")
	}
	return job, nil
}
