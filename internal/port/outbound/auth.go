package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTClaims represents JWT token claims.
type JWTClaims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// TokenValidatorPort validates bearer tokens issued by the identity provider.
type TokenValidatorPort interface {
	// ValidateAccessToken validates an access token.
	ValidateAccessToken(token string) (*JWTClaims, error)
}

// RateLimiterPort defines rate limiting operations.
type RateLimiterPort interface {
	// Allow checks if a request is allowed within rate limits.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// GetRemaining returns remaining requests in window.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// IdempotencyStorePort stores replayable responses keyed by idempotency key.
type IdempotencyStorePort interface {
	// Load returns a stored response. Returns ErrRecordNotFound if none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores a response for ttl.
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Lock claims key for an in-flight request. Returns false if already claimed.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases a claim.
	Unlock(ctx context.Context, key string) error
}
