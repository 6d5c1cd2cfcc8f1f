package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus represents the lifecycle of a generation attempt.
type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "pending"
	AttemptStatusCompleted AttemptStatus = "completed"
	AttemptStatusFailed    AttemptStatus = "failed"
)

// String returns the string representation of the status.
func (s AttemptStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the attempt can no longer change.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusFailed
}

// GenerationAttempt records one coloring request and how it was funded.
type GenerationAttempt struct {
	ID                uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	SelectedStyle     string        `json:"selected_style" gorm:"not null"`
	PromptUsed        string        `json:"prompt_used" gorm:"not null"`
	IsFreeAttempt     bool          `json:"is_free_attempt" gorm:"not null"`
	CostCents         int64         `json:"cost_cents" gorm:"not null"`
	Status            AttemptStatus `json:"status" gorm:"not null;index"`
	FailureReason     string        `json:"failure_reason,omitempty"`
	GeneratedImageURL string        `json:"generated_image_url,omitempty"`
	OriginalImageURL  string        `json:"original_image_url,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	FinishedAt        *time.Time    `json:"finished_at,omitempty"`
}

// TableName returns the database table name.
func (GenerationAttempt) TableName() string {
	return "generation_attempts"
}

// GenerationAttemptResponse represents an attempt in API responses.
type GenerationAttemptResponse struct {
	ID                string     `json:"id"`
	SelectedStyle     string     `json:"selectedStyle"`
	Status            string     `json:"status"`
	IsFreeAttempt     bool       `json:"isFreeAttempt"`
	Cost              float64    `json:"cost"`
	FailureReason     string     `json:"failureReason,omitempty"`
	GeneratedImageURL string     `json:"generatedImageUrl,omitempty"`
	OriginalImageURL  string     `json:"originalImageUrl,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	FinishedAt        *time.Time `json:"finishedAt,omitempty"`
}

// ToResponse converts GenerationAttempt to GenerationAttemptResponse.
func (a *GenerationAttempt) ToResponse() *GenerationAttemptResponse {
	return &GenerationAttemptResponse{
		ID:                a.ID.String(),
		SelectedStyle:     a.SelectedStyle,
		Status:            a.Status.String(),
		IsFreeAttempt:     a.IsFreeAttempt,
		Cost:              CentsToCurrency(a.CostCents),
		FailureReason:     a.FailureReason,
		GeneratedImageURL: a.GeneratedImageURL,
		OriginalImageURL:  a.OriginalImageURL,
		CreatedAt:         a.CreatedAt,
		FinishedAt:        a.FinishedAt,
	}
}
