package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-reviewer/internal/logger"
	"alfredoptarigan/cv-reviewer/internal/models"
	"alfredoptarigan/cv-reviewer/internal/services"
)

const HeaderReviewID = "X-Review-ID"

type ReviewHandler struct {
	reviewer services.ReviewService
	uploads  services.UploadReader
	validate *validator.Validate
	log      *zap.Logger
}

func NewReviewHandler(
	reviewer services.ReviewService,
	uploads services.UploadReader,
	log *zap.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviewer: reviewer,
		uploads:  uploads,
		validate: validator.New(),
		log:      logger.OrNop(log),
	}
}

// HandleReview handles POST /api/review
func (h *ReviewHandler) HandleReview(c *fiber.Ctx) error {
	var req models.ReviewRequest

	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	req.JobDescription = strings.TrimSpace(req.JobDescription)
	if err := h.validate.Struct(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "job_description is required")
	}

	file, err := c.FormFile("cv_file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "cv_file is required")
	}

	cv, err := h.uploads.ReadPDF(file)
	switch {
	case errors.Is(err, services.ErrInvalidInputFormat):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid file type. Please upload a PDF.")
	case errors.Is(err, services.ErrFileTooLarge):
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "CV file too large")
	case err != nil:
		h.log.Error("❌ Failed to read upload", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read uploaded file")
	}

	reviewID := uuid.New()
	c.Set(HeaderReviewID, reviewID.String())

	log := h.log.With(zap.String(logger.FieldReviewID, reviewID.String()))
	log.Info("📥 Review requested",
		zap.String("filename", file.Filename),
		zap.Int("bytes", len(cv)),
		zap.Int("job_description_chars", len([]rune(req.JobDescription))),
	)

	ctx := services.WithReviewID(c.UserContext(), reviewID)
	result, err := h.reviewer.Review(ctx, cv, req.JobDescription)
	if err != nil {
		log.Error("❌ Review failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to generate a review.")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func errorJSON(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
