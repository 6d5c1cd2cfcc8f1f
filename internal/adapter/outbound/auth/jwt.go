package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/colorstudio/server/internal/port/outbound"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string
	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

// tokenClaims mirrors the claims issued by the identity provider.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// jwtValidator implements outbound.TokenValidatorPort for HS256 tokens.
type jwtValidator struct {
	secret []byte
	parser *jwt.Parser
	issuer string
}

// NewJWTValidator creates a new token validator.
func NewJWTValidator(cfg *JWTConfig) outbound.TokenValidatorPort {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &jwtValidator{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
		issuer: cfg.Issuer,
	}
}

// ValidateAccessToken validates an access token and returns its claims.
func (v *jwtValidator) ValidateAccessToken(tokenString string) (*outbound.JWTClaims, error) {
	claims := &tokenClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID in token", ErrInvalidToken)
	}

	return &outbound.JWTClaims{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// GenerateAccessToken signs a token for userID. Used by local tooling and tests;
// production tokens come from the identity provider.
func GenerateAccessToken(cfg *JWTConfig, userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Compile-time check
var _ outbound.TokenValidatorPort = (*jwtValidator)(nil)
