package inbound

import (
	"context"

	"github.com/colorstudio/server/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateRequest is one coloring request as received from the client.
type GenerateRequest struct {
	// ImageData is the source drawing as a data URI.
	ImageData     string `json:"imageData"`
	SelectedStyle string `json:"selectedStyle"`
}

// GenerateResult is returned for a successful generation.
type GenerateResult struct {
	AttemptID                uuid.UUID `json:"attemptId"`
	ColoredImageURL          string    `json:"coloredImageUrl"`
	CreditsUsed              float64   `json:"creditsUsed"`
	RemainingFreeGenerations int       `json:"remainingFreeGenerations"`
	RemainingCredits         float64   `json:"remainingCredits"`
}

// StyleInfo describes a coloring style offered to clients.
type StyleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GenerationDomain defines the generation inbound port.
type GenerationDomain interface {
	// Generate funds, runs and settles one coloring request.
	Generate(ctx context.Context, userID uuid.UUID, req *GenerateRequest) (*GenerateResult, error)

	GetAttempt(ctx context.Context, userID, attemptID uuid.UUID) (*model.GenerationAttempt, error)
	ListAttempts(ctx context.Context, userID uuid.UUID, limit int) ([]*model.GenerationAttempt, error)

	// Styles returns the style catalog in display order.
	Styles() []StyleInfo
}

// ===== Generation HTTP Ports =====

// GenerationHttpPort defines generation HTTP handler interface.
type GenerationHttpPort interface {
	// Generate handles POST /functions/v1/generate-colored-image and POST /api/v1/generations.
	Generate(c *gin.Context)

	// ListAttempts handles GET /api/v1/generations.
	ListAttempts(c *gin.Context)

	// GetAttempt handles GET /api/v1/generations/:id.
	GetAttempt(c *gin.Context)

	// ListStyles handles GET /api/v1/styles.
	ListStyles(c *gin.Context)
}
