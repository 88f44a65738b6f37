// Package auth issues and verifies the dev server's credentials.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
	refreshTokenTTL  = 7 * 24 * time.Hour
)

type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager signs HS256 token pairs shaped like the ones the production
// backend returns.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(user domain.User) (domain.Tokens, error) {
	access, err := m.sign(user.ID, accessTokenType, m.ttl)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := m.sign(user.ID, refreshTokenType, refreshTokenTTL)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return domain.Tokens{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify returns the user id of a valid access token. Refresh tokens are
// rejected.
func (m *TokenManager) Verify(token string) (int64, error) {
	claims, err := m.parse(token, accessTokenType)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return claims.UserID, nil
}

// Refresh signs a new access token from a valid refresh token. Refresh
// tokens are not rotated.
func (m *TokenManager) Refresh(refresh string) (string, int64, error) {
	claims, err := m.parse(refresh, refreshTokenType)
	if err != nil {
		return "", 0, domain.ErrTokenNotValid
	}
	access, err := m.sign(claims.UserID, accessTokenType, m.ttl)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}
	return access, claims.UserID, nil
}

func (m *TokenManager) parse(token, tokenType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
