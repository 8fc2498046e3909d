package authz

import (
	"testing"

	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/domain/user"
)

func principalWith(globalRole, teamID, teamRole string) *Principal {
	p := &Principal{
		User: user.User{ID: "u1", Username: "alice", Role: globalRole},
	}

	if teamID != "" {
		p.Membership = &team.Membership{TeamID: teamID, UserID: "u1", Role: teamRole}
	}

	return p
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name           string
		p              *Principal
		requiredTeamID string
		allowed        []string
		want           Decision
	}{
		{
			name: "anonymous",
			p:    nil,
			want: Unauthenticated,
		},
		{
			name:           "anonymous_team_route",
			p:              nil,
			requiredTeamID: "t1",
			allowed:        ReadRoles,
			want:           Unauthenticated,
		},
		{
			name:           "member_reads",
			p:              principalWith(user.RolePlayer, "t1", team.RolePlayer),
			requiredTeamID: "t1",
			allowed:        ReadRoles,
			want:           Authorized,
		},
		{
			name:           "player_cannot_write",
			p:              principalWith(user.RolePlayer, "t1", team.RolePlayer),
			requiredTeamID: "t1",
			allowed:        WriteRoles,
			want:           InsufficientRole,
		},
		{
			name:           "coach_writes",
			p:              principalWith(user.RolePlayer, "t1", team.RoleCoach),
			requiredTeamID: "t1",
			allowed:        WriteRoles,
			want:           Authorized,
		},
		{
			name:           "coach_cannot_manage",
			p:              principalWith(user.RolePlayer, "t1", team.RoleCoach),
			requiredTeamID: "t1",
			allowed:        ManageRoles,
			want:           InsufficientRole,
		},
		{
			name:           "team_admin_manages",
			p:              principalWith(user.RolePlayer, "t1", team.RoleAdmin),
			requiredTeamID: "t1",
			allowed:        ManageRoles,
			want:           Authorized,
		},
		{
			name:           "non_member_is_forbidden_not_missing",
			p:              principalWith(user.RolePlayer, "", ""),
			requiredTeamID: "t1",
			allowed:        ReadRoles,
			want:           NotAMember,
		},
		{
			name:           "membership_for_other_team_does_not_count",
			p:              principalWith(user.RolePlayer, "t2", team.RoleAdmin),
			requiredTeamID: "t1",
			allowed:        ReadRoles,
			want:           NotAMember,
		},
		{
			name:    "global_admin_is_not_superuser",
			p:       principalWith(user.RoleAdmin, "", ""),
			allowed: []string{user.RoleSuperuser},
			want:    InsufficientRole,
		},
		{
			name:    "superuser_panel",
			p:       principalWith(user.RoleSuperuser, "", ""),
			allowed: []string{user.RoleSuperuser},
			want:    Authorized,
		},
		{
			name:           "superuser_bypasses_membership",
			p:              principalWith(user.RoleSuperuser, "", ""),
			requiredTeamID: "t1",
			allowed:        ManageRoles,
			want:           Authorized,
		},
		{
			name: "authenticated_no_constraints",
			p:    principalWith(user.RolePlayer, "", ""),
			want: Authorized,
		},
		{
			name: "global_role_used_outside_team_scope",
			p: &Principal{
				User: user.User{ID: "u1", Role: user.RoleCoach},
			},
			allowed: []string{user.RoleCoach, user.RoleAdmin},
			want:    Authorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.p, tt.requiredTeamID, tt.allowed)

			if got != tt.want {
				t.Fatalf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveRole(t *testing.T) {
	p := principalWith(user.RoleCoach, "t1", team.RolePlayer)

	if got := p.EffectiveRole(); got != team.RolePlayer {
		t.Fatalf("team role must win inside team scope, got %q", got)
	}

	p.Membership = nil

	if got := p.EffectiveRole(); got != user.RoleCoach {
		t.Fatalf("global role must apply outside team scope, got %q", got)
	}
}
