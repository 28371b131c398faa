package auth

import (
	"fmt"
	"strings"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// CredentialValidator enforces input invariants before any hashing or persistence
// happens: non-blank email, minimum password length, known role.
type CredentialValidator struct {
	minPasswordLength int
	roles             []domain.Role
}

// NewCredentialValidator builds a validator for the configured role set.
func NewCredentialValidator(minPasswordLength int, roles []domain.Role) *CredentialValidator {
	if minPasswordLength <= 0 {
		minPasswordLength = 6
	}
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	return &CredentialValidator{minPasswordLength: minPasswordLength, roles: roles}
}

// Validate checks registration input and returns the canonical role on success.
func (v *CredentialValidator) Validate(email, password, role string) (domain.Role, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperrors.NewValidationError("email must not be blank",
			map[string]any{"field": "email"})
	}
	if strings.TrimSpace(password) == "" || len(password) < v.minPasswordLength {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", v.minPasswordLength),
			map[string]any{"field": "password"})
	}
	parsed, ok := domain.ParseRole(role, v.roles)
	if !ok {
		return "", apperrors.NewValidationError("unknown role",
			map[string]any{"field": "role", "role": role})
	}
	return parsed, nil
}
