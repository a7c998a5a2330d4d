package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arcadebot/internal/dependencies/mocks"
)

func newAdminTokens(secret string) (*AdminTokens, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return NewAdminTokens(secret, clk), clk
}

func TestAdminTokenRoundTrip(t *testing.T) {
	tokens, _ := newAdminTokens("s3cret")

	signed, err := tokens.Mint("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestAdminTokenExpires(t *testing.T) {
	tokens, clk := newAdminTokens("s3cret")
	signed, err := tokens.Mint("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	clk.Advance(time.Hour)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrAdminTokenExpired)
}

func TestAdminTokenRequiresRole(t *testing.T) {
	tokens, _ := newAdminTokens("s3cret")
	signed, err := tokens.Mint("viewer", "player", time.Hour)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrAdminForbidden)
}

func TestAdminTokenWrongSecret(t *testing.T) {
	minter, _ := newAdminTokens("one")
	verifier, _ := newAdminTokens("two")
	signed, err := minter.Mint("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, ErrAdminTokenInvalid)
}

func TestAdminTokenRejectsOtherAlgorithms(t *testing.T) {
	tokens, _ := newAdminTokens("s3cret")
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		Role: RoleAdmin,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, ErrAdminTokenInvalid)
}

func TestAdminTokensDisabledWithoutSecret(t *testing.T) {
	tokens, _ := newAdminTokens("")
	assert.False(t, tokens.Enabled())

	_, err := tokens.Mint("ops", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrAdminNotConfigured)
	_, err = tokens.Verify("anything")
	assert.ErrorIs(t, err, ErrAdminNotConfigured)
}
