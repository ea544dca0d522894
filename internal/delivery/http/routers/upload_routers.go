package routers

import (
	"video-uploader/internal/delivery/http/handlers"
	"video-uploader/internal/delivery/http/middleware"
	"video-uploader/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupVideoRoutes(app *fiber.App, uploadHandler *handlers.UploadHandler, videoHandler *handlers.VideoHandler) {
	api := app.Group("/api/v1", middleware.RequireOwner())

	api.Post("/videos/upload/initiate", uploadHandler.InitiateUpload)
	api.Post("/videos/upload/continue", uploadHandler.ContinueUpload)
	api.Get("/videos/upload/status", uploadHandler.UploadStatus)
	api.Get("/videos/:id", videoHandler.GetVideo)
}

func SetupCleanupRoutes(app *fiber.App, cleanupHandler *handlers.CleanupHandler) {
	app.Delete("/api/v1/videos/:id/staging", middleware.RequireOwner(), cleanupHandler.DeleteStaging)
}

func SetupSystemRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": constants.StatusOK})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)
}
