package mapper

import (
	"video-uploader/internal/domain/dto"
	"video-uploader/internal/domain/entities"
)

func VideoToDTO(v *entities.Video) dto.VideoDTO {
	return dto.VideoDTO{
		ID:          v.VideoID.String(),
		OwnerID:     v.OwnerID,
		Title:       v.Title,
		Description: v.Description,
		Size:        v.Size,
		UploadSize:  v.UploadSize,
		Duration:    v.Duration,
		Status:      v.Status,
		Provider:    int(v.Provider),
		PreviewURL:  v.PreviewURL,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// SettingsFromDTO turns a request ladder override into the stored settings.
// Codec choices are not client-controlled and are left to server config.
func SettingsFromDTO(in *dto.VideoSettingsDTO) *entities.VideoSettings {
	if in == nil || len(in.Qualities) == 0 {
		return nil
	}
	qualities := make([]entities.QualitySetting, 0, len(in.Qualities))
	for _, q := range in.Qualities {
		qualities = append(qualities, entities.QualitySetting{
			Height:           q.Height,
			VideoBitrateKbps: q.VideoBitrateKbps,
			AudioBitrateKbps: q.AudioBitrateKbps,
		})
	}
	return &entities.VideoSettings{
		SchemaVersion: entities.SettingsSchemaVersion,
		Adaptive:      entities.AdaptiveSettings{Qualities: qualities},
	}
}
