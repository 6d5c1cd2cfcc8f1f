// Package memory provides in-memory implementations of the outbound ports.
// They are intended for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
)

// LedgerStore implements outbound.LedgerDatabasePort and outbound.AttemptDatabasePort.
// A single mutex makes every operation atomic.
type LedgerStore struct {
	mu       sync.RWMutex
	credits  map[uuid.UUID]*model.UserCredit
	attempts map[uuid.UUID]*model.GenerationAttempt
	now      func() time.Time
}

// NewLedgerStore creates an empty in-memory ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		credits:  make(map[uuid.UUID]*model.UserCredit),
		attempts: make(map[uuid.UUID]*model.GenerationAttempt),
		now:      time.Now,
	}
}

var (
	_ outbound.LedgerDatabasePort  = (*LedgerStore)(nil)
	_ outbound.AttemptDatabasePort = (*LedgerStore)(nil)
)

// PutCredits stores a copy of credit, replacing any existing record for the user.
func (s *LedgerStore) PutCredits(credit *model.UserCredit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *credit
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.credits[c.UserID] = &c
}

// GetCredits implements outbound.LedgerDatabasePort.
func (s *LedgerStore) GetCredits(ctx context.Context, userID uuid.UUID) (*model.UserCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.credits[userID]
	if !ok {
		return nil, outbound.ErrRecordNotFound
	}
	out := *c
	return &out, nil
}

// ReserveAttempt implements outbound.LedgerDatabasePort.
func (s *LedgerStore) ReserveAttempt(ctx context.Context, attempt *model.GenerationAttempt, initialFree int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.ensureLocked(attempt.UserID, initialFree)
	if attempt.IsFreeAttempt {
		if c.FreeGenerationsRemaining <= 0 {
			return false, nil
		}
		c.FreeGenerationsRemaining--
	} else {
		if c.PaidCreditsCents < attempt.CostCents {
			return false, nil
		}
		c.PaidCreditsCents -= attempt.CostCents
	}
	c.UpdatedAt = s.now()

	a := *attempt
	s.attempts[a.ID] = &a
	return true, nil
}

// CompleteAttempt implements outbound.LedgerDatabasePort.
func (s *LedgerStore) CompleteAttempt(ctx context.Context, attemptID uuid.UUID, imageURL string, finishedAt time.Time) (*model.UserCredit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.pendingLocked(attemptID)
	if err != nil {
		return nil, err
	}
	c, ok := s.credits[a.UserID]
	if !ok {
		return nil, outbound.ErrRecordNotFound
	}

	a.Status = model.AttemptStatusCompleted
	a.GeneratedImageURL = imageURL
	a.FinishedAt = &finishedAt
	c.TotalGenerations++
	c.UpdatedAt = finishedAt

	out := *c
	return &out, nil
}

// FailAttempt implements outbound.LedgerDatabasePort.
func (s *LedgerStore) FailAttempt(ctx context.Context, attemptID uuid.UUID, reason string, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.pendingLocked(attemptID)
	if err != nil {
		return err
	}
	c, ok := s.credits[a.UserID]
	if !ok {
		return outbound.ErrRecordNotFound
	}

	a.Status = model.AttemptStatusFailed
	a.FailureReason = reason
	a.FinishedAt = &finishedAt
	if a.IsFreeAttempt {
		c.FreeGenerationsRemaining++
	} else {
		c.PaidCreditsCents += a.CostCents
	}
	c.UpdatedAt = finishedAt
	return nil
}

// ListPendingBefore implements outbound.LedgerDatabasePort.
func (s *LedgerStore) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.GenerationAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.GenerationAttempt
	for _, a := range s.attempts {
		if a.Status == model.AttemptStatusPending && a.CreatedAt.Before(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AddPaidCredits implements outbound.LedgerDatabasePort.
func (s *LedgerStore) AddPaidCredits(ctx context.Context, userID uuid.UUID, amountCents int64, initialFree int) (*model.UserCredit, error) {
	if amountCents < 0 {
		return nil, outbound.ErrBalanceConstraint
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.ensureLocked(userID, initialFree)
	c.PaidCreditsCents += amountCents
	c.UpdatedAt = s.now()

	out := *c
	return &out, nil
}

// GetByID implements outbound.AttemptDatabasePort.
func (s *LedgerStore) GetByID(ctx context.Context, id uuid.UUID) (*model.GenerationAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, outbound.ErrRecordNotFound
	}
	out := *a
	return &out, nil
}

// ListByUser implements outbound.AttemptDatabasePort.
func (s *LedgerStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.GenerationAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.GenerationAttempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SetOriginalImageURL implements outbound.AttemptDatabasePort.
func (s *LedgerStore) SetOriginalImageURL(ctx context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[id]
	if !ok {
		return outbound.ErrRecordNotFound
	}
	a.OriginalImageURL = url
	return nil
}

func (s *LedgerStore) ensureLocked(userID uuid.UUID, initialFree int) *model.UserCredit {
	c, ok := s.credits[userID]
	if !ok {
		now := s.now()
		c = &model.UserCredit{
			ID:                       uuid.New(),
			UserID:                   userID,
			FreeGenerationsRemaining: initialFree,
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		s.credits[userID] = c
	}
	return c
}

func (s *LedgerStore) pendingLocked(attemptID uuid.UUID) (*model.GenerationAttempt, error) {
	a, ok := s.attempts[attemptID]
	if !ok {
		return nil, outbound.ErrRecordNotFound
	}
	if a.Status.IsTerminal() {
		return nil, outbound.ErrAttemptNotPending
	}
	return a, nil
}
