package auth

import (
	"errors"

	"exampro/internal/model"
)

var (
	ErrUnauthenticated = errors.New("access_token_required")
	ErrForbidden       = errors.New("insufficient_permissions")
)

// RoleSet is an allow-list of roles for a route or operation.
type RoleSet map[model.Role]struct{}

func NewRoleSet(roles ...model.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(role model.Role) bool {
	_, ok := s[role]
	return ok
}

// Static route policy.
var (
	AdminOnly  = NewRoleSet(model.RoleAdministrator)
	Management = NewRoleSet(model.RoleAdministrator, model.RoleDirector)
	Graders    = NewRoleSet(model.RoleAdministrator, model.RoleDirector, model.RoleTeacher)
	Everyone   = NewRoleSet(model.Roles...)
)

// Authorize checks that the verified identity holds one of the allowed roles.
func Authorize(claims *Claims, allowed RoleSet) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if !allowed.Contains(claims.Role) {
		return ErrForbidden
	}
	return nil
}

// IsStudent reports whether reads must be scoped to the caller's own records.
func IsStudent(claims *Claims) bool {
	return claims != nil && claims.Role == model.RoleStudent
}
