package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_ValidateAccessToken(t *testing.T) {
	cfg := &JWTConfig{Secret: "test-secret", Issuer: "https://auth.colorstudio.app"}
	validator := NewJWTValidator(cfg)
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateAccessToken(cfg, userID, "kid@example.com", time.Hour)
		require.NoError(t, err)

		claims, err := validator.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "kid@example.com", claims.Email)
		assert.Equal(t, "authenticated", claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateAccessToken(cfg, userID, "", -time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateAccessToken(&JWTConfig{Secret: "other", Issuer: cfg.Issuer}, userID, "", time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := GenerateAccessToken(&JWTConfig{Secret: cfg.Secret, Issuer: "someone-else"}, userID, "", time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: userID.String(), Issuer: cfg.Issuer}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := validator.ValidateAccessToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTValidator_NoIssuerCheck(t *testing.T) {
	validator := NewJWTValidator(&JWTConfig{Secret: "s"})
	token, err := GenerateAccessToken(&JWTConfig{Secret: "s", Issuer: "anything"}, uuid.New(), "", time.Minute)
	require.NoError(t, err)

	_, err = validator.ValidateAccessToken(token)
	assert.NoError(t, err)
}
