package dto

import "video-uploader/pkg/constants"

// InitiateUploadRequestDTO is the metadata sent with initiate-upload, either
// as base64 JSON in the Upload-Metadata header or as the JSON body.
type InitiateUploadRequestDTO struct {
	Title       string             `json:"title" validate:"max=255"`
	Description string             `json:"description" validate:"max=5000"`
	Duration    float64            `json:"duration" validate:"gte=0"`
	Provider    constants.Provider `json:"provider" validate:"gte=0,lte=2"`
	ExternalID  string             `json:"externalId" validate:"max=255"`
	SizeBytes   int64              `json:"size" validate:"gte=0"`
	PreviewSize int64              `json:"previewSize" validate:"gte=0"`
	Settings    *VideoSettingsDTO  `json:"settings,omitempty"`
}

type VideoSettingsDTO struct {
	Qualities []QualityDTO `json:"qualities" validate:"dive"`
}

type QualityDTO struct {
	Height           int  `json:"height" validate:"gt=0"`
	VideoBitrateKbps int  `json:"videoBitrateKbps" validate:"gt=0"`
	AudioBitrateKbps *int `json:"audioBitrateKbps,omitempty" validate:"omitempty,gt=0"`
}

type InitiateUploadResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Partial bool   `json:"-"`
}

type ContinueUploadRequestDTO struct {
	VideoID    string
	FromOffset int64
}

type ContinueUploadResponse struct {
	ID         string `json:"id"`
	UploadSize int64  `json:"uploadSize"`
	Size       int64  `json:"size"`
	Status     string `json:"status"`
	Complete   bool   `json:"complete"`
}

type UploadStatusResponse struct {
	ID         string `json:"id"`
	UploadSize int64  `json:"uploadSize"`
	Size       int64  `json:"size"`
	Status     string `json:"status"`
}
