package domain

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. The canonical platform set is below;
// deployments may narrow or extend it via configuration.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleRestaurant Role = "RESTAURANT"
	RoleDelivery   Role = "DELIVERY"
	RoleAdmin      Role = "ADMIN"
)

// DefaultRoles returns the platform's canonical role set.
func DefaultRoles() []Role {
	return []Role{RoleCustomer, RoleRestaurant, RoleDelivery, RoleAdmin}
}

// RolesFromStrings converts configured role names into Roles.
func RolesFromStrings(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		if trimmed := strings.ToUpper(strings.TrimSpace(r)); trimmed != "" {
			roles = append(roles, Role(trimmed))
		}
	}
	if len(roles) == 0 {
		return DefaultRoles()
	}
	return roles
}

// ParseRole normalizes a raw role string against the allowed set.
func ParseRole(raw string, allowed []Role) (Role, bool) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, role := range allowed {
		if candidate == role {
			return role, true
		}
	}
	return "", false
}

// User is the domain model for registered accounts. Email is unique (enforced by
// the store) and case-sensitive as stored. Records are never mutated by auth flows.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
