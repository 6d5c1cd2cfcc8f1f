package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sqlSelectCredits   = `SELECT \* FROM "user_credits" WHERE user_id = \$1`
	sqlSelectAttempt   = `SELECT \* FROM "generation_attempts" WHERE id = \$1 .*FOR UPDATE`
	sqlProvision       = regexp.QuoteMeta(`INSERT INTO user_credits (id, user_id, free_generations_remaining`)
	sqlDebitFree       = regexp.QuoteMeta(`UPDATE user_credits SET free_generations_remaining = free_generations_remaining - 1`)
	sqlDebitPaid       = regexp.QuoteMeta(`UPDATE user_credits SET paid_credits_cents = paid_credits_cents - $1`)
	sqlInsertAttempt   = regexp.QuoteMeta(`INSERT INTO "generation_attempts"`)
	sqlCompleteAttempt = regexp.QuoteMeta(`UPDATE generation_attempts SET status = $1, generated_image_url = $2`)
	sqlFailAttempt     = regexp.QuoteMeta(`UPDATE generation_attempts SET status = $1, failure_reason = $2`)
	sqlCountGeneration = regexp.QuoteMeta(`UPDATE user_credits SET total_generations = total_generations + 1`)
	sqlRefundFree      = regexp.QuoteMeta(`UPDATE user_credits SET free_generations_remaining = free_generations_remaining + 1`)
	sqlRefundPaid      = regexp.QuoteMeta(`UPDATE user_credits SET paid_credits_cents = paid_credits_cents + $1`)
)

var creditColumns = []string{"id", "user_id", "free_generations_remaining", "paid_credits_cents", "total_generations", "created_at", "updated_at"}

var attemptColumns = []string{"id", "user_id", "selected_style", "prompt_used", "is_free_attempt", "cost_cents", "status", "created_at"}

func testAttempt(free bool, cost int64) *model.GenerationAttempt {
	return &model.GenerationAttempt{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		SelectedStyle: "fantasy",
		PromptUsed:    "prompt",
		IsFreeAttempt: free,
		CostCents:     cost,
		Status:        model.AttemptStatusPending,
		CreatedAt:     time.Now(),
	}
}

func TestLedgerAdapter_GetCredits(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		now := time.Now()
		mock.ExpectQuery(sqlSelectCredits).
			WillReturnRows(sqlmock.NewRows(creditColumns).
				AddRow(uuid.New().String(), userID.String(), 2, int64(400), 5, now, now))

		credit, err := NewLedgerAdapter(db).GetCredits(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, credit.FreeGenerationsRemaining)
		assert.Equal(t, int64(400), credit.PaidCreditsCents)
		assert.Equal(t, 5, credit.TotalGenerations)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(sqlSelectCredits).WillReturnRows(sqlmock.NewRows(creditColumns))

		_, err := NewLedgerAdapter(db).GetCredits(ctx, userID)
		assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
	})
}

func TestLedgerAdapter_ReserveAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("free reservation commits", func(t *testing.T) {
		db, mock := newMockDB(t)
		attempt := testAttempt(true, 0)

		mock.ExpectBegin()
		mock.ExpectExec(sqlProvision).
			WithArgs(sqlmock.AnyArg(), attempt.UserID, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(sqlDebitFree).
			WithArgs(attempt.CreatedAt, attempt.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlInsertAttempt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := NewLedgerAdapter(db).ReserveAttempt(ctx, attempt, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("paid reservation guards the balance", func(t *testing.T) {
		db, mock := newMockDB(t)
		attempt := testAttempt(false, 200)

		mock.ExpectBegin()
		mock.ExpectExec(sqlProvision).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(sqlDebitPaid).
			WithArgs(int64(200), attempt.CreatedAt, attempt.UserID, int64(200)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlInsertAttempt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := NewLedgerAdapter(db).ReserveAttempt(ctx, attempt, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row debited rolls back without inserting", func(t *testing.T) {
		db, mock := newMockDB(t)
		attempt := testAttempt(true, 0)

		mock.ExpectBegin()
		mock.ExpectExec(sqlProvision).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(sqlDebitFree).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		ok, err := NewLedgerAdapter(db).ReserveAttempt(ctx, attempt, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check violation maps to balance constraint", func(t *testing.T) {
		db, mock := newMockDB(t)
		attempt := testAttempt(false, 200)

		mock.ExpectBegin()
		mock.ExpectExec(sqlProvision).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(sqlDebitPaid).WillReturnError(&pgconn.PgError{Code: "23514"})
		mock.ExpectRollback()

		ok, err := NewLedgerAdapter(db).ReserveAttempt(ctx, attempt, 1)
		assert.False(t, ok)
		assert.ErrorIs(t, err, outbound.ErrBalanceConstraint)
	})

	t.Run("insert failure rolls back the debit", func(t *testing.T) {
		db, mock := newMockDB(t)
		attempt := testAttempt(true, 0)

		mock.ExpectBegin()
		mock.ExpectExec(sqlProvision).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlDebitFree).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlInsertAttempt).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		ok, err := NewLedgerAdapter(db).ReserveAttempt(ctx, attempt, 1)
		assert.False(t, ok)
		require.Error(t, err)
		assert.NotErrorIs(t, err, outbound.ErrBalanceConstraint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerAdapter_CompleteAttempt(t *testing.T) {
	ctx := context.Background()
	attemptID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	t.Run("completes a pending attempt", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(sqlSelectAttempt).
			WillReturnRows(sqlmock.NewRows(attemptColumns).
				AddRow(attemptID.String(), userID.String(), "bold", "p", true, int64(0), "pending", now))
		mock.ExpectExec(sqlCompleteAttempt).
			WithArgs(model.AttemptStatusCompleted, "https://img", now, attemptID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlCountGeneration).
			WithArgs(now, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(sqlSelectCredits).
			WillReturnRows(sqlmock.NewRows(creditColumns).
				AddRow(uuid.New().String(), userID.String(), 0, int64(0), 1, now, now))
		mock.ExpectCommit()

		credit, err := NewLedgerAdapter(db).CompleteAttempt(ctx, attemptID, "https://img", now)
		require.NoError(t, err)
		assert.Equal(t, 1, credit.TotalGenerations)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses a finalized attempt", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(sqlSelectAttempt).
			WillReturnRows(sqlmock.NewRows(attemptColumns).
				AddRow(attemptID.String(), userID.String(), "bold", "p", true, int64(0), "completed", now))
		mock.ExpectRollback()

		_, err := NewLedgerAdapter(db).CompleteAttempt(ctx, attemptID, "https://img", now)
		assert.ErrorIs(t, err, outbound.ErrAttemptNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown attempt", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(sqlSelectAttempt).WillReturnRows(sqlmock.NewRows(attemptColumns))
		mock.ExpectRollback()

		_, err := NewLedgerAdapter(db).CompleteAttempt(ctx, attemptID, "https://img", now)
		assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
	})
}

func TestLedgerAdapter_FailAttempt(t *testing.T) {
	ctx := context.Background()
	attemptID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	t.Run("refunds a free reservation", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(sqlSelectAttempt).
			WillReturnRows(sqlmock.NewRows(attemptColumns).
				AddRow(attemptID.String(), userID.String(), "bold", "p", true, int64(0), "pending", now))
		mock.ExpectExec(sqlFailAttempt).
			WithArgs(model.AttemptStatusFailed, "timeout", now, attemptID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlRefundFree).
			WithArgs(now, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewLedgerAdapter(db).FailAttempt(ctx, attemptID, "timeout", now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refunds a paid reservation", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(sqlSelectAttempt).
			WillReturnRows(sqlmock.NewRows(attemptColumns).
				AddRow(attemptID.String(), userID.String(), "bold", "p", false, int64(200), "pending", now))
		mock.ExpectExec(sqlFailAttempt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlRefundPaid).
			WithArgs(int64(200), now, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewLedgerAdapter(db).FailAttempt(ctx, attemptID, "provider error", now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses a finalized attempt", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(sqlSelectAttempt).
			WillReturnRows(sqlmock.NewRows(attemptColumns).
				AddRow(attemptID.String(), userID.String(), "bold", "p", false, int64(200), "failed", now))
		mock.ExpectRollback()

		err := NewLedgerAdapter(db).FailAttempt(ctx, attemptID, "again", now)
		assert.ErrorIs(t, err, outbound.ErrAttemptNotPending)
	})
}

func TestLedgerAdapter_AddPaidCredits(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlProvision).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlRefundPaid).
		WithArgs(int64(1000), sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlSelectCredits).
		WillReturnRows(sqlmock.NewRows(creditColumns).
			AddRow(uuid.New().String(), userID.String(), 1, int64(1000), 0, now, now))
	mock.ExpectCommit()

	credit, err := NewLedgerAdapter(db).AddPaidCredits(ctx, userID, 1000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), credit.PaidCreditsCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerAdapter_ListPendingBefore(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	cutoff := time.Now().Add(-2 * time.Minute)

	mock.ExpectQuery(`SELECT \* FROM "generation_attempts" WHERE status = \$1 AND created_at < \$2 ORDER BY created_at ASC LIMIT \$3`).
		WithArgs("pending", cutoff, 100).
		WillReturnRows(sqlmock.NewRows(attemptColumns).
			AddRow(uuid.New().String(), uuid.New().String(), "bold", "p", true, int64(0), "pending", cutoff.Add(-time.Hour)))

	stale, err := NewLedgerAdapter(db).ListPendingBefore(ctx, cutoff, 100)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, model.AttemptStatusPending, stale[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
