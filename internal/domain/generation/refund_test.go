package generation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/adapter/outbound/memory"
	"github.com/colorstudio/server/internal/domain/ledger"
	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
)

// flakyLedgerStore fails the first failN FailAttempt calls.
type flakyLedgerStore struct {
	*memory.LedgerStore
	failN atomic.Int32
}

func (s *flakyLedgerStore) FailAttempt(ctx context.Context, attemptID uuid.UUID, reason string, finishedAt time.Time) error {
	if s.failN.Add(-1) >= 0 {
		return errors.New("connection reset by peer")
	}
	return s.LedgerStore.FailAttempt(ctx, attemptID, reason, finishedAt)
}

func newRefundFixture(t *testing.T, failN int32) (*Domain, *ledger.Domain, *flakyLedgerStore, *MockGenerator) {
	t.Helper()
	store := &flakyLedgerStore{LedgerStore: memory.NewLedgerStore()}
	store.failN.Store(failN)

	ledgerDomain := ledger.NewLedgerDomain(store, &ledger.Config{
		UnitCostCents:          200,
		InitialFreeGenerations: 1,
		ReserveAttempts:        3,
	}, nil, zap.NewNop())

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("OpenRouter API failed: 503"))

	cfg := DefaultConfig()
	cfg.ProviderTimeout = time.Second
	cfg.ReleaseBackoff = time.Millisecond
	return NewDomain(ledgerDomain, store, generator, nil, cfg, nil, zap.NewNop()), ledgerDomain, store, generator
}

func TestGenerate_FailedGenerationIsRefundedDespiteTransientStoreError(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	d, ledgerDomain, store, _ := newRefundFixture(t, 1)

	_, err := d.Generate(ctx, userID, &inbound.GenerateRequest{ImageData: drawing})
	require.ErrorIs(t, err, ErrGenerationFailed)

	credit, err := ledgerDomain.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, credit.FreeGenerationsRemaining)
	assert.Equal(t, 0, credit.TotalGenerations)

	attempts, err := store.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.AttemptStatusFailed, attempts[0].Status)
}

func TestGenerate_UnreleasedAttemptIsRefundedByStaleSweep(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	d, ledgerDomain, store, _ := newRefundFixture(t, 3)

	_, err := d.Generate(ctx, userID, &inbound.GenerateRequest{ImageData: drawing})
	require.ErrorIs(t, err, ErrGenerationFailed)

	attempts, err := store.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.AttemptStatusPending, attempts[0].Status)

	time.Sleep(5 * time.Millisecond)
	released, err := ledgerDomain.ReleaseStale(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	credit, err := ledgerDomain.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, credit.FreeGenerationsRemaining)

	attempt, err := store.GetByID(ctx, attempts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusFailed, attempt.Status)
}
