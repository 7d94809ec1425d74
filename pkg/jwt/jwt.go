// Package jwt issues and verifies the bearer credentials presented by API clients.
//
// Tokens are HS256-signed and carry the caller's id, display name and admin
// flag, so authorization never needs a database round trip.
package jwt

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/listen-stream/music-svc/pkg/errors"
)

// DefaultTokenExpiry applies when Config.TokenExpiry is zero.
const DefaultTokenExpiry = 7 * 24 * time.Hour

// ErrEmptySecret is returned by NewManager when no signing secret is configured.
var ErrEmptySecret = errors.New("jwt: signing secret is required")

// Claims is the identity embedded in a token. The JSON names match what
// existing clients decode.
type Claims struct {
	UserID  string `json:"_id"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Config configures a Manager. When Issuer is set, tokens from any other
// issuer are rejected.
type Config struct {
	Secret      string
	Issuer      string
	TokenExpiry time.Duration
}

// Manager signs and verifies tokens with one shared secret.
type Manager struct {
	secret []byte
	issuer string
	ttl    atomic.Int64
	now    func() time.Time
	parser *jwt.Parser
}

// NewManager validates cfg and builds a Manager. It returns ErrEmptySecret
// when no secret is set; a zero TokenExpiry means DefaultTokenExpiry.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	m := &Manager{secret: []byte(cfg.Secret), issuer: cfg.Issuer, now: time.Now}
	m.SetTTL(cfg.TokenExpiry)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	m.parser = jwt.NewParser(opts...)
	return m, nil
}

// GenerateToken signs a token for the given identity, valid for TTL.
func (m *Manager) GenerateToken(userID, name string, isAdmin bool) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:  userID,
		Name:    name,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL())),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm, expiry and issuer. Every failure
// is reported as errors.ErrTokenInvalid with the cause attached.
func (m *Manager) ValidateToken(token string) (*Claims, error) {
	var claims Claims
	if _, err := m.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return nil, apperrors.ErrTokenInvalid.WithError(err)
	}
	if claims.UserID == "" {
		return nil, apperrors.ErrTokenInvalid.WithError(errors.New("token has no user id"))
	}
	return &claims, nil
}

// TTL is the lifetime of newly issued tokens.
func (m *Manager) TTL() time.Duration {
	return time.Duration(m.ttl.Load())
}

// SetTTL changes the lifetime of tokens issued from now on. Tokens already
// issued keep their expiry. Zero or negative means DefaultTokenExpiry.
func (m *Manager) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	m.ttl.Store(int64(ttl))
}
