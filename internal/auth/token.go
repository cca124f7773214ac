// Package auth issues and verifies session tokens, hashes passwords and
// decides whether a refresh token may be exchanged for a new pair.
package auth

import (
	"fmt"
	"time"

	"github.com/dom/vidshare-backend/internal/config"
	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenConfig holds the signing keys and lifetimes for both token kinds.
type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

func TokenConfigFrom(cfg *config.Config) TokenConfig {
	return TokenConfig{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		RefreshTTL:    cfg.RefreshTokenExpiry,
	}
}

// Claims is the payload of both token kinds. Refresh tokens carry only the
// registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	claims := Claims{
		RegisteredClaims: s.registered(user, s.cfg.AccessTTL),
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
	}
	return sign(claims, s.cfg.AccessSecret)
}

func (s *TokenService) IssueRefreshToken(user *domain.User) (string, error) {
	claims := Claims{RegisteredClaims: s.registered(user, s.cfg.RefreshTTL)}
	return sign(claims, s.cfg.RefreshSecret)
}

// IssuePair mints a fresh access/refresh pair. Each token gets its own jti so
// two pairs issued within the same second still differ.
func (s *TokenService) IssuePair(user *domain.User) (*TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.cfg.AccessSecret)
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.cfg.RefreshSecret)
}

// verify collapses every failure cause into domain.ErrInvalidToken.
func (s *TokenService) verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) registered(user *domain.User, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
