package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-reviewer/internal/models"
)

const (
	AppName    = "CV Reviewer AI API"
	AppVersion = "1.0.0"
)

// HandleRoot handles GET /
func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(models.WelcomeResponse{
		Message: "Welcome to the " + AppName + "!",
		Version: AppVersion,
		Endpoints: []string{
			"GET /health",
			"POST /api/review",
		},
	})
}

// HandleHealth handles GET /health
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// ErrorHandler renders errors that escape handlers, including fiber's own
// (404, 405, 413), in the same shape as handler errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return errorJSON(c, code, message)
}
