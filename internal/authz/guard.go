package authz

import (
	"github.com/rosterhub/rosterhub/internal/domain/team"
)

type Decision int

const (
	Authorized Decision = iota
	Unauthenticated
	NotAMember
	InsufficientRole
)

func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case NotAMember:
		return "not_a_member"
	case InsufficientRole:
		return "insufficient_role"
	}
	return "unknown"
}

// Canonical role sets. This is the single place route policy lives; handlers
// and routers reference these instead of spelling out roles ad hoc.
var (
	// ReadRoles may read team resources (matches, events, announcements).
	ReadRoles = []string{team.RolePlayer, team.RoleCoach, team.RoleAdmin}

	// WriteRoles may create/update/delete team resources.
	WriteRoles = []string{team.RoleCoach, team.RoleAdmin}

	// ManageRoles may manage members, settings and the join code.
	ManageRoles = []string{team.RoleAdmin}
)

// Decide is the pure authorization decision over a resolved principal.
//
//  1. no principal -> Unauthenticated
//  2. team in scope but no membership for it -> NotAMember (403, never 404:
//     the team's existence is not a secret, the caller's access is)
//  3. effective role not in the allowed set -> InsufficientRole
//
// A global superuser passes every check; that is the admin-panel bypass.
func Decide(p *Principal, requiredTeamID string, allowed []string) Decision {
	if p == nil {
		return Unauthenticated
	}

	if p.IsSuperuser() {
		return Authorized
	}

	if requiredTeamID != "" {
		if p.Membership == nil || p.Membership.TeamID != requiredTeamID {
			return NotAMember
		}
	}

	if len(allowed) > 0 {
		role := p.EffectiveRole()

		for _, a := range allowed {
			if role == a {
				return Authorized
			}
		}

		return InsufficientRole
	}

	return Authorized
}
