package router

import (
	"live_stream_service/internal/gateway/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the gateway routes
func RegisterRoutes(app *fiber.App, gatewayHandler *handlers.GatewayHandler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("api gateway start!")
	})
	app.Post("/upload", gatewayHandler.ProxyUpload)
	app.Get("/videos", gatewayHandler.GetVideos)
	app.Get("/videos/:id", gatewayHandler.GetVideoStatus)
	app.Get("/hls/:videoId/:fileName", gatewayHandler.GetHLSFile)
}
