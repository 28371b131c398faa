package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

const testSecret = "unit-test-secret"

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(issuedAt))

	token, expiresAt, err := tm.IssueAccessToken("alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, expiresAt.Equal(issuedAt.Add(15*time.Minute)))

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleCustomer, *claims.Role)
	assert.Equal(t, domain.TokenKindAccess, claims.Kind)
	assert.True(t, claims.ExpiresAt.Time.Equal(claims.IssuedAt.Time.Add(15*time.Minute)))
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(issuedAt))

	token, expiresAt, err := tm.IssueRefreshToken("alice@example.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.Equal(issuedAt.Add(24*time.Hour)))

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Nil(t, claims.Role)
	assert.Equal(t, domain.TokenKindRefresh, claims.Kind)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(issuedAt))

	token, expiresAt, err := issuer.IssueAccessToken("alice@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	justBefore := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(expiresAt.Add(-time.Second)))
	_, err = justBefore.Verify(token)
	assert.NoError(t, err)

	atExpiry := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(expiresAt))
	_, err = atExpiry.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)

	after := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(expiresAt.Add(time.Hour)))
	_, err = after.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenManagerWithClock("other-secret", 15*time.Minute, 24*time.Hour, fixedClock(issuedAt))
	verifier := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(issuedAt))

	token, _, err := issuer.IssueAccessToken("alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	_, err := tm.Verify("definitely-not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManagerWithClock(testSecret, 15*time.Minute, 24*time.Hour, fixedClock(issuedAt))

	claims := &Claims{
		Kind: domain.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Verify(unsigned)
	assert.Error(t, err)
}
