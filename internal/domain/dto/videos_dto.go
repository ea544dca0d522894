package dto

import "time"

type VideoDTO struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Size        *int64    `json:"size,omitempty"`
	UploadSize  *int64    `json:"uploadSize,omitempty"`
	Duration    *float64  `json:"duration,omitempty"`
	Status      string    `json:"status"`
	Provider    int       `json:"provider"`
	PreviewURL  string    `json:"previewUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
