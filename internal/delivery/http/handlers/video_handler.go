package handlers

import (
	"video-uploader/internal/delivery/http/middleware"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/usecases"
	apperrors "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type VideoHandler struct {
	uploadService usecases.UploadService
	log           *zap.Logger
}

func NewVideoHandler(uploadService usecases.UploadService, log *zap.Logger) *VideoHandler {
	return &VideoHandler{uploadService: uploadService, log: logger.Named(log, "video_handler")}
}

// GetVideo
//
// @Summary      Get Video
// @Description  Returns the video record, including its processing status and preview URL
// @Tags         Video
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Param        id         path    string  true  "Video ID"
// @Success      200  {object}  dto.VideoDTO
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /videos/{id} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	video, err := h.uploadService.GetVideo(c.UserContext(), middleware.OwnerID(c), c.Params("id"))
	if err != nil {
		return apperrors.HandleError(c, h.log, err)
	}
	return c.JSON(video)
}
