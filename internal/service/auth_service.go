package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthService coordinates the register, login and refresh flows. Each call is
// independent; the only shared state is the immutable token manager.
type AuthService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	validator  *auth.CredentialValidator
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
// Hasher and Tokens default from config when nil so tests can inject fakes.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     auth.PasswordHasher
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     hasher,
		validator:  auth.NewCredentialValidator(cfg.Auth.MinPasswordLength, domain.RolesFromStrings(cfg.Auth.Roles)),
		tokens:     tokens,
		dispatcher: deps.Dispatcher,
	}
}

// Register creates a new account and issues its first token pair. Either the
// record and both tokens are created, or nothing is.
func (s *AuthService) Register(ctx context.Context, email, password, role string) (*domain.TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateUser(email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewDependencyFailure("user lookup", err)
	}

	parsedRole, err := s.validator.Validate(email, password, role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("password hashing", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         parsedRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique constraint closes the race between concurrent registrations.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateUser(email)
		}
		return nil, apperrors.NewDependencyFailure("create user", err)
	}

	pair, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.Email,
		events.UserRegisteredPayload{UserID: user.ID, Role: user.Role})
	return pair, nil
}

// Login authenticates stored credentials and issues a fresh token pair. Missing
// user and wrong password produce the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewDependencyFailure("user lookup", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.NewInvalidCredentials()
	}

	pair, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.Email,
		events.UserLoggedInPayload{UserID: user.ID, Role: user.Role})
	return pair, nil
}

// Refresh redeems a refresh token for a new access token. The role is re-read
// from the store, never taken from the presented token, and the refresh token
// itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return "", time.Time{}, apperrors.NewInvalidRefreshToken(err)
	}
	if claims.Kind != domain.TokenKindRefresh {
		return "", time.Time{}, apperrors.NewInvalidRefreshToken(errors.New("not a refresh token"))
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, apperrors.NewUserNotFound(claims.Subject)
		}
		return "", time.Time{}, apperrors.NewDependencyFailure("user lookup", err)
	}

	accessToken, expiresAt, err := s.tokens.IssueAccessToken(user.Email, user.Role)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return accessToken, expiresAt, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) issuePair(subject string, role domain.Role) (*domain.TokenPair, error) {
	accessToken, expiresAt, err := s.tokens.IssueAccessToken(subject, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refreshToken, _, err := s.tokens.IssueRefreshToken(subject)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
