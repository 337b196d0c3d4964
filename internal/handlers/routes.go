package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the public routes and the token-protected review API.
func RegisterRoutes(app *fiber.App, review *ReviewHandler, authToken string, log *zap.Logger) {
	app.Get("/", HandleRoot)
	app.Get("/health", HandleHealth)

	api := app.Group("/api", BearerAuth(authToken, log))
	api.Post("/review", review.HandleReview)
}
