package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	StatusCompleted ReviewStatus = "completed"
	StatusFailed    ReviewStatus = "failed"
)

// ReviewRun is the metadata of one pipeline invocation. It never holds CV
// text or report content.
type ReviewRun struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Status         ReviewStatus `gorm:"not null" json:"status"`
	ChunkCount     int          `json:"chunk_count"`
	RetrievedCount int          `json:"retrieved_count"`
	PromptChars    int          `json:"prompt_chars"`
	DurationMs     int64        `json:"duration_ms"`
	ErrorMessage   *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ReviewRun) TableName() string {
	return "review_runs"
}
