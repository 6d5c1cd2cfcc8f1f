package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/colorstudio/server/internal/utils/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// staleBatchSize bounds how many stale attempts are loaded at once.
const staleBatchSize = 100

// Domain implements the credit ledger.
//
// Funding is taken in two steps. Reserve debits the chosen balance and stores
// the attempt as pending in one transaction, so two concurrent requests can
// never both spend the last free generation. Settle then completes the attempt
// and counts it, while Release fails it and returns the reservation. Either
// step only applies to a pending attempt, which makes both at-most-once.
type Domain struct {
	ledgerDB outbound.LedgerDatabasePort
	config   *Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewLedgerDomain creates a new ledger domain.
func NewLedgerDomain(
	ledgerDB outbound.LedgerDatabasePort,
	config *Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Domain {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ReserveAttempts < 1 {
		config.ReserveAttempts = 1
	}
	return &Domain{
		ledgerDB: ledgerDB,
		config:   config,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Compile-time interface check
var _ inbound.LedgerDomain = (*Domain)(nil)

// UnitCostCents returns the paid price of one generation.
func (d *Domain) UnitCostCents() int64 {
	return d.config.UnitCostCents
}

// DecideFunding reports how the next generation would be funded from the stored balance.
// A user without a credit record is treated as having nothing.
func (d *Domain) DecideFunding(ctx context.Context, userID uuid.UUID) (model.Funding, error) {
	credit, err := d.ledgerDB.GetCredits(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return Decide(nil, d.config.UnitCostCents), nil
		}
		return model.Funding{}, fmt.Errorf("get credits: %w", err)
	}
	return Decide(credit, d.config.UnitCostCents), nil
}

// Reserve decides the funding for attempt and atomically debits it.
// On success attempt is persisted as pending with IsFreeAttempt and CostCents set.
// Returns ErrInsufficientCredits when nothing can pay, in which case no attempt exists.
func (d *Domain) Reserve(ctx context.Context, attempt *model.GenerationAttempt) (model.Funding, error) {
	denied := model.Funding{Kind: model.FundingDenied}

	for i := 0; i < d.config.ReserveAttempts; i++ {
		credit, err := d.snapshot(ctx, attempt.UserID)
		if err != nil {
			return model.Funding{}, err
		}

		funding := Decide(credit, d.config.UnitCostCents)
		if !funding.Allowed() {
			return denied, ErrInsufficientCredits
		}

		reserved, err := d.tryReserve(ctx, attempt, funding)
		if err != nil {
			return model.Funding{}, err
		}

		// A lost free slot falls through to paid credits when they cover the cost.
		if !reserved && funding.IsFree() && credit.PaidCreditsCents >= d.config.UnitCostCents {
			funding = model.Funding{Kind: model.FundingPaid, CostCents: d.config.UnitCostCents}
			if reserved, err = d.tryReserve(ctx, attempt, funding); err != nil {
				return model.Funding{}, err
			}
		}

		if reserved {
			d.metrics.RecordReservation(funding.Kind.String())
			d.logger.Info("credits reserved",
				zap.String("user_id", attempt.UserID.String()),
				zap.String("attempt_id", attempt.ID.String()),
				zap.String("funding", funding.Kind.String()),
				zap.Int64("cost_cents", funding.CostCents),
			)
			return funding, nil
		}

		// Another request spent the balance between our read and our write.
		d.metrics.RecordReservationConflict()
		d.logger.Debug("reservation lost race, re-deciding",
			zap.String("user_id", attempt.UserID.String()),
			zap.Int("try", i+1),
		)
	}

	return denied, ErrInsufficientCredits
}

// tryReserve writes attempt as pending funded by funding. Returns false if the
// balance no longer covers it.
func (d *Domain) tryReserve(ctx context.Context, attempt *model.GenerationAttempt, funding model.Funding) (bool, error) {
	attempt.IsFreeAttempt = funding.IsFree()
	attempt.CostCents = funding.CostCents
	attempt.Status = model.AttemptStatusPending
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = d.now()
	}

	reserved, err := d.ledgerDB.ReserveAttempt(ctx, attempt, d.config.InitialFreeGenerations)
	if err != nil {
		if errors.Is(err, outbound.ErrBalanceConstraint) {
			return false, nil
		}
		return false, fmt.Errorf("reserve attempt: %w", err)
	}
	return reserved, nil
}

// Settle completes a pending attempt. The reserved balance stays spent and
// total_generations is incremented.
func (d *Domain) Settle(ctx context.Context, attemptID uuid.UUID, imageURL string) (*model.UserCredit, error) {
	credit, err := d.ledgerDB.CompleteAttempt(ctx, attemptID, imageURL, d.now())
	if err != nil {
		return nil, d.mapFinalizeError(err)
	}

	d.metrics.RecordSettlement("settled")
	d.logger.Info("attempt settled",
		zap.String("attempt_id", attemptID.String()),
		zap.String("user_id", credit.UserID.String()),
		zap.Int("free_remaining", credit.FreeGenerationsRemaining),
		zap.Int64("paid_cents", credit.PaidCreditsCents),
	)
	return credit, nil
}

// Release fails a pending attempt and returns its reservation, so a failed
// generation costs nothing.
func (d *Domain) Release(ctx context.Context, attemptID uuid.UUID, reason string) error {
	if err := d.ledgerDB.FailAttempt(ctx, attemptID, reason, d.now()); err != nil {
		return d.mapFinalizeError(err)
	}

	d.metrics.RecordSettlement("released")
	d.logger.Info("attempt released",
		zap.String("attempt_id", attemptID.String()),
		zap.String("reason", reason),
	)
	return nil
}

// ReleaseStale fails attempts left pending for longer than olderThan and
// refunds them. A request that could not finalize its own attempt is
// refunded here. Returns how many attempts were released.
func (d *Domain) ReleaseStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := d.now().Add(-olderThan)
	reason := fmt.Sprintf("abandoned: not finalized within %s", olderThan)

	released := 0
	for {
		stale, err := d.ledgerDB.ListPendingBefore(ctx, cutoff, staleBatchSize)
		if err != nil {
			return released, fmt.Errorf("list stale attempts: %w", err)
		}

		for _, attempt := range stale {
			err := d.ledgerDB.FailAttempt(ctx, attempt.ID, reason, d.now())
			if errors.Is(err, outbound.ErrAttemptNotPending) {
				// Finalized by its request in the meantime.
				continue
			}
			if err != nil {
				return released, fmt.Errorf("release stale attempt %s: %w", attempt.ID, err)
			}
			released++
			d.metrics.RecordSettlement("expired")
			d.logger.Warn("stale attempt released",
				zap.String("attempt_id", attempt.ID.String()),
				zap.String("user_id", attempt.UserID.String()),
				zap.Time("created_at", attempt.CreatedAt),
			)
		}

		if len(stale) < staleBatchSize {
			return released, nil
		}
	}
}

// GetBalance returns the user's balance. Users who have never generated see
// the balance their account will be provisioned with.
func (d *Domain) GetBalance(ctx context.Context, userID uuid.UUID) (*model.UserCredit, error) {
	return d.snapshot(ctx, userID)
}

// AddCredits adds paid credits to a user's balance.
func (d *Domain) AddCredits(ctx context.Context, userID uuid.UUID, amountCents int64, source model.CreditTopUpSource) (*model.UserCredit, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if !source.IsValid() {
		return nil, ErrInvalidSource
	}

	credit, err := d.ledgerDB.AddPaidCredits(ctx, userID, amountCents, d.config.InitialFreeGenerations)
	if err != nil {
		return nil, fmt.Errorf("add paid credits: %w", err)
	}

	d.metrics.RecordCreditsAdded(string(source), amountCents)
	d.logger.Info("credits added",
		zap.String("user_id", userID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.String("source", string(source)),
		zap.Int64("paid_cents", credit.PaidCreditsCents),
	)
	return credit, nil
}

// snapshot reads the stored balance, or the provisioning balance if none exists yet.
func (d *Domain) snapshot(ctx context.Context, userID uuid.UUID) (*model.UserCredit, error) {
	credit, err := d.ledgerDB.GetCredits(ctx, userID)
	if err == nil {
		return credit, nil
	}
	if !errors.Is(err, outbound.ErrRecordNotFound) {
		return nil, fmt.Errorf("get credits: %w", err)
	}
	return &model.UserCredit{
		UserID:                   userID,
		FreeGenerationsRemaining: d.config.InitialFreeGenerations,
	}, nil
}

func (d *Domain) mapFinalizeError(err error) error {
	switch {
	case errors.Is(err, outbound.ErrAttemptNotPending):
		return ErrAlreadyFinalized
	case errors.Is(err, outbound.ErrRecordNotFound):
		return ErrAttemptNotFound
	default:
		return err
	}
}
