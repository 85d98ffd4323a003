package auth

import (
	"errors"
	"fmt"
	"time"

	"greencare-be/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = apperr.New(apperr.ErrUnauthenticated, "invalid or expired token")
	ErrWrongTokenType = apperr.New(apperr.ErrUnauthenticated, "wrong token type")
)

type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity is what a token vouches for.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// TokenPair is an access token with the refresh token that renews it.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) IssuePair(id Identity) (TokenPair, error) {
	access, err := m.issue(id, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.issue(id, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) IssueAccess(id Identity) (string, error) {
	return m.issue(id, TokenTypeAccess, m.accessTTL)
}

func (m *TokenManager) issue(id Identity, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:    id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ParseAccess validates an access token and returns its identity.
func (m *TokenManager) ParseAccess(raw string) (Identity, error) {
	return m.parse(raw, TokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its identity.
func (m *TokenManager) ParseRefresh(raw string) (Identity, error) {
	return m.parse(raw, TokenTypeRefresh)
}

func (m *TokenManager) parse(raw, want string) (Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	if claims.TokenType != want {
		return Identity{}, ErrWrongTokenType
	}

	return Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}
