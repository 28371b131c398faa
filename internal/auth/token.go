package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Verification failure kinds. Callers map these onto their own error surface.
var (
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
)

// Clock supplies the current time. Injectable so expiry boundaries are testable.
type Clock func() time.Time

// TokenManager issues and verifies HMAC-signed JWT tokens. The signing secret is
// fixed at construction and shared by issuance and verification; tokens are valid
// strictly before their expiry instant, with no skew tolerance.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        Clock
}

// NewTokenManager builds a manager using the wall clock.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return NewTokenManagerWithClock(secret, accessTTL, refreshTTL, time.Now)
}

// NewTokenManagerWithClock builds a manager with an explicit clock.
func NewTokenManagerWithClock(secret string, accessTTL, refreshTTL time.Duration, clock Clock) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        clock,
	}
}

// Claims describes the JWT payload. Refresh tokens carry no role claim; the role
// is re-read from the store when a refresh token is redeemed.
type Claims struct {
	Role *domain.Role     `json:"role,omitempty"`
	Kind domain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived role-bearing token for the subject.
func (tm *TokenManager) IssueAccessToken(subject string, role domain.Role) (string, time.Time, error) {
	return tm.issue(subject, &role, domain.TokenKindAccess, tm.accessTTL)
}

// IssueRefreshToken signs a longer-lived token carrying the subject only.
func (tm *TokenManager) IssueRefreshToken(subject string) (string, time.Time, error) {
	return tm.issue(subject, nil, domain.TokenKindRefresh, tm.refreshTTL)
}

func (tm *TokenManager) issue(subject string, role *domain.Role, kind domain.TokenKind, ttl time.Duration) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses the token, checks its signature against the manager's secret and
// its expiry against the manager's clock, and returns the claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}
