package authz

import (
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/domain/user"
)

// Principal is the resolved identity for the current request: the freshly
// fetched user plus, once a team guard has run, their membership in the team
// under scope. Constructed per request, never cached across requests.
type Principal struct {
	User       user.User
	Membership *team.Membership
}

// EffectiveRole is the team membership role when a team is in scope, the
// global role otherwise.
func (p *Principal) EffectiveRole() string {
	if p.Membership != nil {
		return p.Membership.Role
	}
	return p.User.Role
}

func (p *Principal) IsSuperuser() bool {
	return p.User.Role == user.RoleSuperuser
}
