package entities

import (
	"time"

	"video-uploader/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	VideoID     uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OwnerID     string             `gorm:"type:varchar(64);not null;index"`
	Title       string             `gorm:"type:varchar(255);not null"`
	Description string             `gorm:"type:text"`
	Size        *int64             // declared size, nil for remote providers
	UploadSize  *int64             // bytes durably received
	Duration    *float64           // seconds, nil until probed
	Status      string             `gorm:"type:varchar(20);not null;index"`
	Provider    constants.Provider `gorm:"not null;default:0"`
	ExternalID  string             `gorm:"type:varchar(255)"`
	Settings    *VideoSettings     `gorm:"type:text"`
	PreviewURL  string             `gorm:"type:varchar(1024)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v *Video) BeforeCreate(tx *gorm.DB) (err error) {
	if v.VideoID == uuid.Nil {
		v.VideoID = uuid.New()
	}
	return
}

// Received returns the number of bytes received so far.
func (v *Video) Received() int64 {
	if v.UploadSize == nil {
		return 0
	}
	return *v.UploadSize
}

// DeclaredSize returns the declared total size, zero when unknown.
func (v *Video) DeclaredSize() int64 {
	if v.Size == nil {
		return 0
	}
	return *v.Size
}

// UploadComplete reports whether every declared byte has arrived.
func (v *Video) UploadComplete() bool {
	return v.Size != nil && v.Received() >= *v.Size
}

// Clone returns a deep copy so in-memory stores never share pointers with callers.
func (v *Video) Clone() *Video {
	if v == nil {
		return nil
	}
	out := *v
	if v.Size != nil {
		size := *v.Size
		out.Size = &size
	}
	if v.UploadSize != nil {
		uploaded := *v.UploadSize
		out.UploadSize = &uploaded
	}
	if v.Duration != nil {
		d := *v.Duration
		out.Duration = &d
	}
	if v.Settings != nil {
		settings := *v.Settings
		settings.Adaptive.Qualities = append([]QualitySetting(nil), v.Settings.Adaptive.Qualities...)
		out.Settings = &settings
	}
	return &out
}
