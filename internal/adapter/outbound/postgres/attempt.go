package postgres

import (
	"context"
	"errors"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// attemptAdapter implements outbound.AttemptDatabasePort.
type attemptAdapter struct {
	db *gorm.DB
}

// NewAttemptAdapter creates a new attempt database adapter.
func NewAttemptAdapter(db *gorm.DB) outbound.AttemptDatabasePort {
	return &attemptAdapter{db: db}
}

func (a *attemptAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.GenerationAttempt, error) {
	var attempt model.GenerationAttempt
	err := a.db.WithContext(ctx).First(&attempt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrRecordNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (a *attemptAdapter) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.GenerationAttempt, error) {
	var attempts []*model.GenerationAttempt
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (a *attemptAdapter) SetOriginalImageURL(ctx context.Context, id uuid.UUID, url string) error {
	res := a.db.WithContext(ctx).
		Model(&model.GenerationAttempt{}).
		Where("id = ?", id).
		UpdateColumn("original_image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outbound.ErrRecordNotFound
	}
	return nil
}

// Compile-time check
var _ outbound.AttemptDatabasePort = (*attemptAdapter)(nil)
