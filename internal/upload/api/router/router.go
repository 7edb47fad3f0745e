package router

import (
	"live_stream_service/internal/upload/api/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the upload service routes
func RegisterRoutes(app *fiber.App, videoHandler *handlers.VideoHandler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("upload service start!")
	})
	app.Post("/upload", videoHandler.UploadVideo)
	app.Get("/videos", videoHandler.ListVideos)
	app.Get("/videos/:id", videoHandler.GetVideo)
}
