package handlers

import (
	"video-uploader/internal/delivery/http/middleware"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/usecases"
	apperrors "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CleanupHandler struct {
	cleanupService usecases.CleanupService
	log            *zap.Logger
}

func NewCleanupHandler(cleanupService usecases.CleanupService, log *zap.Logger) *CleanupHandler {
	return &CleanupHandler{cleanupService: cleanupService, log: logger.Named(log, "cleanup_handler")}
}

// DeleteStaging
//
// @Summary      Delete Staged Upload
// @Description  Removes the staged original and preview of a video that is ready, blocked or failed
// @Tags         Upload
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Param        id         path    string  true  "Video ID"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse  "Upload still pending or processing"
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /videos/{id}/staging [delete]
func (h *CleanupHandler) DeleteStaging(c *fiber.Ctx) error {
	if err := h.cleanupService.CleanupStaging(c.UserContext(), middleware.OwnerID(c), c.Params("id")); err != nil {
		return apperrors.HandleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
