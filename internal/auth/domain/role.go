package domain

import (
	"errors"
	"strings"
)

// Role is the coarse authorization level attached to a user and to every
// access token. Roles form a total order: ADMIN satisfies everything USER
// does, but not the other way around.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole normalizes and validates a stored or user-supplied role name.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Satisfies reports whether a holder of r may perform an action that
// requires the given role.
func (r Role) Satisfies(required Role) bool {
	return r.rank() >= required.rank()
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

func (r Role) String() string { return string(r) }
