// internal/service/token.go
package service

import (
	"fmt"
	"time"

	"coinquest/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "coinquest"

// TokenManager signs and validates HS256 bearer tokens whose subject is the user id.
type TokenManager struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(secret string, expiresIn time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}
}

// Sign issues a token for the user.
func (m *TokenManager) Sign(userID uuid.UUID) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iss": tokenIssuer,
		"iat": now.Unix(),
		"exp": now.Add(m.expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its subject. Any failure is util.ErrUnauthorized.
func (m *TokenManager) Parse(tokenString string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", util.ErrUnauthorized, err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", util.ErrUnauthorized, err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject", util.ErrUnauthorized)
	}
	return id, nil
}
