// Package auth issues and checks the tokens the helpdesk host presents
// when pushing context snapshots to the dashboard.
package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// HostSubject is the only subject accepted on host tokens.
const HostSubject = "host"

// ErrSecretRequired is returned when signing without a secret.
var ErrSecretRequired = errors.New("auth: host context secret is not configured")

// TokenManager handles issuing and validating host JWTs.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// Enabled reports whether a secret is configured.
func (tm *TokenManager) Enabled() bool {
	return tm != nil && len(tm.secret) > 0
}

// Claims describes the host token payload.
type Claims struct {
	Subject  string `json:"subject"`
	Teammate string `json:"teammate,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a host token on behalf of teammate.
func (tm *TokenManager) GenerateToken(teammate string) (string, time.Time, error) {
	if !tm.Enabled() {
		return "", time.Time{}, ErrSecretRequired
	}
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Subject:  HostSubject,
		Teammate: teammate,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   HostSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	if !tm.Enabled() {
		return nil, ErrSecretRequired
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject != HostSubject {
		return nil, errors.New("token subject is not the host")
	}
	return claims, nil
}
