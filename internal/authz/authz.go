// Package authz decides whether a caller may reach a route. Routes declare
// a Policy; one middleware evaluates it before the handler runs.
package authz

import (
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleEmployee || r == RoleAdmin
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func (p *Principal) IsStaff() bool {
	return p != nil && (p.Role == RoleEmployee || p.Role == RoleAdmin)
}

// Owns reports whether the caller is userID or an admin.
func (p *Principal) Owns(userID uuid.UUID) bool {
	return p != nil && (p.UserID == userID || p.Role == RoleAdmin)
}

type Policy struct {
	Public bool
	Roles  []Role
}

var Public = Policy{Public: true}

// Authenticated admits any signed-in role.
var Authenticated = Policy{}

func Roles(roles ...Role) Policy {
	return Policy{Roles: roles}
}

type Decision struct {
	Allowed bool
	Err     *httperr.AppError
}

func Evaluate(p Policy, who *Principal) Decision {
	if p.Public {
		return Decision{Allowed: true}
	}
	if who == nil {
		return Decision{Err: httperr.Unauthenticated("unauthenticated", "Authentification requise.")}
	}
	if len(p.Roles) == 0 {
		return Decision{Allowed: true}
	}
	for _, r := range p.Roles {
		if r == who.Role {
			return Decision{Allowed: true}
		}
	}
	return Decision{Err: httperr.Forbidden("forbidden", "Accès refusé.")}
}
