package routers

import (
	"video-uploader/internal/infrastructure/storage"

	"github.com/gofiber/fiber/v2"
)

// SetupMediaRoutes serves a local blob directory at the path LocalStorage
// builds its default URLs from.
func SetupMediaRoutes(app *fiber.App, dir string) {
	app.Static(storage.LocalMediaRoute, dir)
}
