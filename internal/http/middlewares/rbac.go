package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/authz"
	"github.com/rosterhub/rosterhub/internal/domain/team"
)

// RequireTeamMember loads the caller's membership in the :id team and rejects
// non-members with 403. It never answers 404 here: the team's existence is
// not what is being protected, the caller's access is.
func (m *AuthMiddleware) RequireTeamMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)

		if !ok {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		teamID := c.Param("id")

		mem, err := m.memberships.Get(c.Request.Context(), teamID, p.User.ID)

		if err != nil {
			if errors.Is(err, team.ErrMembershipNotFound) {
				// superusers bypass membership, everyone else is out
				if p.IsSuperuser() {
					c.Next()
					return
				}

				abortError(c, http.StatusForbidden, "not_a_member", "You are not a member of this team")
				return
			}

			abortError(c, http.StatusInternalServerError, "internal_error", "Could not check team membership")
			return
		}

		p.Membership = &mem
		c.Next()
	}
}

// RequireTeamRole gates a team route on the membership role, via the central
// decision function.
func (m *AuthMiddleware) RequireTeamRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)

		switch authz.Decide(p, c.Param("id"), allowed) {
		case authz.Authorized:
			c.Next()
		case authz.Unauthenticated:
			abortError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		case authz.NotAMember:
			abortError(c, http.StatusForbidden, "not_a_member", "You are not a member of this team")
		default:
			abortError(c, http.StatusForbidden, "insufficient_role", "Your team role does not allow this")
		}
	}
}

// RequireGlobalRole gates cross-team routes on the user's global role.
func (m *AuthMiddleware) RequireGlobalRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)

		switch authz.Decide(p, "", allowed) {
		case authz.Authorized:
			c.Next()
		case authz.Unauthenticated:
			abortError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		default:
			abortError(c, http.StatusForbidden, "forbidden", "Insufficient privileges")
		}
	}
}
