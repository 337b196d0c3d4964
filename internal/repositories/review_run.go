package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/cv-reviewer/internal/models"
)

type ReviewRunRepository interface {
	Create(run *models.ReviewRun) error
}

type reviewRunRepository struct {
	db *gorm.DB
}

// NewReviewRunRepository returns a gorm-backed repository, or a no-op one when
// db is nil.
func NewReviewRunRepository(db *gorm.DB) ReviewRunRepository {
	if db == nil {
		return NopReviewRunRepository{}
	}
	return &reviewRunRepository{db: db}
}

func (r *reviewRunRepository) Create(run *models.ReviewRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create review run: %w", err)
	}
	return nil
}

// NopReviewRunRepository discards every run.
type NopReviewRunRepository struct{}

func (NopReviewRunRepository) Create(*models.ReviewRun) error { return nil }
