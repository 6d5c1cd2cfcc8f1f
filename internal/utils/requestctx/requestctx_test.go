package requestctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "req-1", RequestID(WithRequestID(context.Background(), "req-1")))
}

func TestUserID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, uuid.Nil, UserID(context.Background()))
	assert.Equal(t, id, UserID(WithUserID(context.Background(), id)))
}
