package handlers

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-reviewer/internal/logger"
	"alfredoptarigan/cv-reviewer/internal/models"
)

var ErrAuthFailure = errors.New("invalid or expired token")

const authFailureMessage = "Invalid or expired token. You do not have permission to access this resource."

// BearerAuth rejects requests whose Authorization header does not carry the
// shared token. Nothing downstream runs on rejection.
func BearerAuth(token string, log *zap.Logger) fiber.Handler {
	log = logger.OrNop(log)
	expected := []byte(token)

	return func(c *fiber.Ctx) error {
		presented, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			log.Warn("🔒 Rejected request", zap.Error(ErrAuthFailure), zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{
				Error: authFailureMessage,
				Code:  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
