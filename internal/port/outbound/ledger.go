package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/colorstudio/server/internal/model"
	"github.com/google/uuid"
)

var (
	// ErrRecordNotFound is returned when a looked-up row does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrAttemptNotPending is returned when finalizing an attempt that was already completed or failed.
	ErrAttemptNotPending = errors.New("attempt is not pending")

	// ErrBalanceConstraint is returned when a write would drive a balance below zero.
	ErrBalanceConstraint = errors.New("balance would become negative")
)

// LedgerDatabasePort defines credit ledger persistence operations.
// Every method that changes a balance runs in a single transaction.
type LedgerDatabasePort interface {
	// GetCredits gets a user's credit record. Returns ErrRecordNotFound if the user has none.
	GetCredits(ctx context.Context, userID uuid.UUID) (*model.UserCredit, error)

	// ReserveAttempt creates the credit record if missing (with initialFree free generations),
	// debits the attempt's funding source only if the balance still covers it, and inserts
	// the pending attempt. Returns (false, nil) without writing anything if the balance no
	// longer covers the attempt.
	ReserveAttempt(ctx context.Context, attempt *model.GenerationAttempt, initialFree int) (bool, error)

	// CompleteAttempt moves a pending attempt to completed and counts the generation.
	// Returns ErrAttemptNotPending if the attempt is not pending.
	CompleteAttempt(ctx context.Context, attemptID uuid.UUID, imageURL string, finishedAt time.Time) (*model.UserCredit, error)

	// FailAttempt moves a pending attempt to failed and refunds its reservation.
	// Returns ErrAttemptNotPending if the attempt is not pending.
	FailAttempt(ctx context.Context, attemptID uuid.UUID, reason string, finishedAt time.Time) error

	// ListPendingBefore lists up to limit attempts still pending that were created
	// before cutoff, oldest first.
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.GenerationAttempt, error)

	// AddPaidCredits adds cents to the paid balance, creating the record if missing.
	AddPaidCredits(ctx context.Context, userID uuid.UUID, amountCents int64, initialFree int) (*model.UserCredit, error)
}

// AttemptDatabasePort defines generation attempt read operations.
type AttemptDatabasePort interface {
	// GetByID gets an attempt by ID. Returns ErrRecordNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.GenerationAttempt, error)

	// ListByUser lists a user's attempts, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.GenerationAttempt, error)

	// SetOriginalImageURL records where the uploaded source drawing lives.
	SetOriginalImageURL(ctx context.Context, id uuid.UUID, url string) error
}
