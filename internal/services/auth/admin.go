package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/arcadebot/internal/dependencies/clock"
)

// RoleAdmin is the only role accepted on administrative endpoints
const RoleAdmin = "admin"

const adminIssuer = "arcadebot"

// Errors
var (
	ErrAdminNotConfigured = errors.New("admin tokens are not configured")
	ErrAdminTokenInvalid  = errors.New("admin token is invalid")
	ErrAdminTokenExpired  = errors.New("admin token is expired")
	ErrAdminForbidden     = errors.New("admin role required")
)

// AdminClaims are the validated claims of an admin bearer token
type AdminClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

type adminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AdminTokens mints and verifies HS256 bearer tokens for operators
type AdminTokens struct {
	secret []byte
	clock  clock.Clock
}

// NewAdminTokens creates an AdminTokens keyed by secret. An empty secret
// yields a verifier that rejects everything.
func NewAdminTokens(secret string, clock clock.Clock) *AdminTokens {
	return &AdminTokens{secret: []byte(secret), clock: clock}
}

// Enabled reports whether a signing secret is configured
func (a *AdminTokens) Enabled() bool {
	return len(a.secret) > 0
}

// Mint signs a token for subject carrying role, valid for ttl
func (a *AdminTokens) Mint(subject, role string, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", ErrAdminNotConfigured
	}
	if ttl <= 0 {
		return "", fmt.Errorf("admin token ttl must be positive")
	}
	now := a.clock.Now().UTC()
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify checks signature, issuer, expiry and the admin role
func (a *AdminTokens) Verify(token string) (*AdminClaims, error) {
	if !a.Enabled() {
		return nil, ErrAdminNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrAdminTokenInvalid
	}

	var parsed adminClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdminTokenInvalid, err)
	}
	if parsed.Issuer != adminIssuer || parsed.ExpiresAt == nil {
		return nil, ErrAdminTokenInvalid
	}
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(a.clock.Now().UTC()) {
		return nil, ErrAdminTokenExpired
	}
	if parsed.Role != RoleAdmin {
		return nil, ErrAdminForbidden
	}
	return &AdminClaims{Subject: parsed.Subject, Role: parsed.Role, ExpiresAt: exp}, nil
}
