package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errReservationLost = errors.New("reservation lost")

// ledgerAdapter implements outbound.LedgerDatabasePort.
// Balance changes are written as guarded UPDATE statements inside a transaction.
type ledgerAdapter struct {
	db *gorm.DB
}

// NewLedgerAdapter creates a new ledger database adapter.
func NewLedgerAdapter(db *gorm.DB) outbound.LedgerDatabasePort {
	return &ledgerAdapter{db: db}
}

func (a *ledgerAdapter) GetCredits(ctx context.Context, userID uuid.UUID) (*model.UserCredit, error) {
	var credit model.UserCredit
	err := a.db.WithContext(ctx).First(&credit, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrRecordNotFound
		}
		return nil, err
	}
	return &credit, nil
}

func (a *ledgerAdapter) ReserveAttempt(ctx context.Context, attempt *model.GenerationAttempt, initialFree int) (bool, error) {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCredits(tx, attempt.UserID, initialFree, attempt.CreatedAt); err != nil {
			return err
		}

		var res *gorm.DB
		if attempt.IsFreeAttempt {
			res = tx.Exec(
				`UPDATE user_credits SET free_generations_remaining = free_generations_remaining - 1, updated_at = ?
				 WHERE user_id = ? AND free_generations_remaining > 0`,
				attempt.CreatedAt, attempt.UserID,
			)
		} else {
			res = tx.Exec(
				`UPDATE user_credits SET paid_credits_cents = paid_credits_cents - ?, updated_at = ?
				 WHERE user_id = ? AND paid_credits_cents >= ?`,
				attempt.CostCents, attempt.CreatedAt, attempt.UserID, attempt.CostCents,
			)
		}
		if res.Error != nil {
			return fmt.Errorf("debit credits: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errReservationLost
		}

		if err := tx.Create(attempt).Error; err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		return nil
	})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errReservationLost):
		return false, nil
	case isCheckViolation(err):
		return false, outbound.ErrBalanceConstraint
	default:
		return false, err
	}
}

func (a *ledgerAdapter) CompleteAttempt(ctx context.Context, attemptID uuid.UUID, imageURL string, finishedAt time.Time) (*model.UserCredit, error) {
	var credit model.UserCredit
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := lockPendingAttempt(tx, attemptID)
		if err != nil {
			return err
		}

		if err := tx.Exec(
			`UPDATE generation_attempts SET status = ?, generated_image_url = ?, finished_at = ? WHERE id = ?`,
			model.AttemptStatusCompleted, imageURL, finishedAt, attemptID,
		).Error; err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}

		if err := tx.Exec(
			`UPDATE user_credits SET total_generations = total_generations + 1, updated_at = ? WHERE user_id = ?`,
			finishedAt, attempt.UserID,
		).Error; err != nil {
			return fmt.Errorf("count generation: %w", err)
		}

		return tx.First(&credit, "user_id = ?", attempt.UserID).Error
	})
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (a *ledgerAdapter) FailAttempt(ctx context.Context, attemptID uuid.UUID, reason string, finishedAt time.Time) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := lockPendingAttempt(tx, attemptID)
		if err != nil {
			return err
		}

		if err := tx.Exec(
			`UPDATE generation_attempts SET status = ?, failure_reason = ?, finished_at = ? WHERE id = ?`,
			model.AttemptStatusFailed, reason, finishedAt, attemptID,
		).Error; err != nil {
			return fmt.Errorf("fail attempt: %w", err)
		}

		var res *gorm.DB
		if attempt.IsFreeAttempt {
			res = tx.Exec(
				`UPDATE user_credits SET free_generations_remaining = free_generations_remaining + 1, updated_at = ? WHERE user_id = ?`,
				finishedAt, attempt.UserID,
			)
		} else {
			res = tx.Exec(
				`UPDATE user_credits SET paid_credits_cents = paid_credits_cents + ?, updated_at = ? WHERE user_id = ?`,
				attempt.CostCents, finishedAt, attempt.UserID,
			)
		}
		if res.Error != nil {
			return fmt.Errorf("refund reservation: %w", res.Error)
		}
		return nil
	})
}

func (a *ledgerAdapter) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.GenerationAttempt, error) {
	var attempts []*model.GenerationAttempt
	err := a.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.AttemptStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (a *ledgerAdapter) AddPaidCredits(ctx context.Context, userID uuid.UUID, amountCents int64, initialFree int) (*model.UserCredit, error) {
	var credit model.UserCredit
	now := time.Now()
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCredits(tx, userID, initialFree, now); err != nil {
			return err
		}
		if err := tx.Exec(
			`UPDATE user_credits SET paid_credits_cents = paid_credits_cents + ?, updated_at = ? WHERE user_id = ?`,
			amountCents, now, userID,
		).Error; err != nil {
			return fmt.Errorf("add paid credits: %w", err)
		}
		return tx.First(&credit, "user_id = ?", userID).Error
	})
	if err != nil {
		if isCheckViolation(err) {
			return nil, outbound.ErrBalanceConstraint
		}
		return nil, err
	}
	return &credit, nil
}

// ensureCredits provisions a credit record for userID if none exists.
func ensureCredits(tx *gorm.DB, userID uuid.UUID, initialFree int, now time.Time) error {
	err := tx.Exec(
		`INSERT INTO user_credits (id, user_id, free_generations_remaining, paid_credits_cents, total_generations, created_at, updated_at)
		 VALUES (?, ?, ?, 0, 0, ?, ?) ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userID, initialFree, now, now,
	).Error
	if err != nil {
		return fmt.Errorf("provision credits: %w", err)
	}
	return nil
}

// lockPendingAttempt loads an attempt FOR UPDATE and checks it is still pending.
func lockPendingAttempt(tx *gorm.DB, attemptID uuid.UUID) (*model.GenerationAttempt, error) {
	var attempt model.GenerationAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, "id = ?", attemptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrRecordNotFound
		}
		return nil, fmt.Errorf("lock attempt: %w", err)
	}
	if attempt.Status.IsTerminal() {
		return nil, outbound.ErrAttemptNotPending
	}
	return &attempt, nil
}

// Compile-time check
var _ outbound.LedgerDatabasePort = (*ledgerAdapter)(nil)
