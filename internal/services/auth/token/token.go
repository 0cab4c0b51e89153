// Package token mints and verifies signed session tokens for portal accounts.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSecretRequired indicates the minter was built without a signing secret.
	ErrSecretRequired = errors.New("token secret is required")
	// ErrInvalidToken indicates a token failed signature or claim validation.
	ErrInvalidToken = errors.New("invalid token")
)

const issuer = "stretchlad"

// DefaultTTL bounds session lifetime when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the verified identity carried by one session token.
type Claims struct {
	AccountID string
	Role      string
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Minter signs and verifies HS256 session tokens.
type Minter struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

// NewMinter constructs a session token minter.
func NewMinter(secret string, ttl time.Duration, clock func() time.Time) (*Minter, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Minter{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// Mint issues one signed session token for an account.
func (m *Minter) Mint(accountID string, role string) (string, error) {
	if m == nil || len(m.secret) == 0 {
		return "", ErrSecretRequired
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("account id is required")
	}

	now := m.clock().UTC()
	claims := sessionClaims{
		Role: strings.TrimSpace(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates one session token and returns its identity claims.
func (m *Minter) Verify(tokenString string) (Claims, error) {
	if m == nil || len(m.secret) == 0 {
		return Claims{}, ErrSecretRequired
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrInvalidToken
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return m.clock().UTC() }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		AccountID: claims.Subject,
		Role:      claims.Role,
	}, nil
}
