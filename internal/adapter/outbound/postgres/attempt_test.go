package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptAdapter_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "generation_attempts" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(attemptColumns).
				AddRow(id.String(), uuid.New().String(), "crayons", "p", false, int64(200), "failed", time.Now()))

		attempt, err := NewAttemptAdapter(db).GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.AttemptStatusFailed, attempt.Status)
		assert.Equal(t, int64(200), attempt.CostCents)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "generation_attempts" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(attemptColumns))

		_, err := NewAttemptAdapter(db).GetByID(ctx, id)
		assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
	})
}

func TestAttemptAdapter_ListByUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "generation_attempts" WHERE user_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(userID, 20).
		WillReturnRows(sqlmock.NewRows(attemptColumns).
			AddRow(uuid.New().String(), userID.String(), "bold", "p", true, int64(0), "completed", time.Now()).
			AddRow(uuid.New().String(), userID.String(), "storybook", "p", false, int64(200), "pending", time.Now().Add(-time.Minute)))

	list, err := NewAttemptAdapter(db).ListByUser(ctx, userID, 20)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptAdapter_SetOriginalImageURL(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	query := regexp.QuoteMeta(`UPDATE "generation_attempts" SET "original_image_url"=$1 WHERE id = $2`)

	t.Run("updates", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(query).
			WithArgs("https://cdn/o.png", id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewAttemptAdapter(db).SetOriginalImageURL(ctx, id, "https://cdn/o.png"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing attempt", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewAttemptAdapter(db).SetOriginalImageURL(ctx, id, "https://cdn/o.png")
		assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
	})
}
