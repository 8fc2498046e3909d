package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/actorctx"
	"github.com/rosterhub/rosterhub/internal/auth"
	"github.com/rosterhub/rosterhub/internal/authz"
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/domain/user"
	"github.com/rosterhub/rosterhub/internal/session"
)

const SessionCookieName = "sid"

// PrincipalResolver is the slice of the session manager the middleware needs.
type PrincipalResolver interface {
	Resolve(ctx context.Context, sessionID string) (user.User, error)
	FreshUser(ctx context.Context, userID string) (user.User, error)
}

// TokenVerifier kept small so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// MembershipGetter loads a membership fresh from storage; the guard never
// trusts one cached on a previous request.
type MembershipGetter interface {
	Get(ctx context.Context, teamID, userID string) (team.Membership, error)
}

type AuthMiddleware struct {
	sessions    PrincipalResolver
	tokens      TokenVerifier
	memberships MembershipGetter
}

func NewAuthMiddleware(sessions PrincipalResolver, tokens TokenVerifier, memberships MembershipGetter) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:    sessions,
		tokens:      tokens,
		memberships: memberships,
	}
}

// Authenticate resolves the caller once per request: session cookie first,
// then bearer token. Anonymous callers pass through; whether that is
// acceptable is the downstream guard's call. A storage failure is recorded
// separately from "no session" so protected routes can answer 500 instead of
// silently treating the caller as logged out.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		rctx := c.Request.Context()

		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			u, err := m.sessions.Resolve(rctx, cookie)

			if err == nil {
				m.attach(c, u, AuthMethodSession)
				c.Next()
				return
			}

			if !errors.Is(err, session.ErrNoSession) {
				c.Set(ctxResolveErr, err)
			}
		}

		if raw := bearerToken(c); raw != "" && m.tokens != nil {
			claims, err := m.tokens.VerifyAccessToken(raw)

			if err == nil {
				// trust only the subject; role and profile come from storage
				u, err := m.sessions.FreshUser(rctx, claims.UserID)

				if err == nil {
					m.attach(c, u, AuthMethodBearer)
					c.Next()
					return
				}

				if !errors.Is(err, session.ErrNoSession) {
					c.Set(ctxResolveErr, err)
				}
			}
		}

		c.Next()
	}
}

func (m *AuthMiddleware) attach(c *gin.Context, u user.User, method string) {
	p := &authz.Principal{User: u}

	c.Set(ctxPrincipal, p)
	c.Set(ctxAuthMethod, method)
	c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))
}

// RequireAuth aborts anonymous callers with 401, or 500 when anonymity was
// caused by the session store being unreachable.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c); ok {
			c.Next()
			return
		}

		if _, failed := c.Get(ctxResolveErr); failed {
			abortError(c, http.StatusInternalServerError, "internal_error", "Could not resolve session")
			return
		}

		abortError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
	}
}

// Helpers so handlers don't need to know the magic keys.

func PrincipalFromContext(c *gin.Context) (*authz.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)

	if !ok {
		return nil, false
	}

	p, ok := v.(*authz.Principal)

	return p, ok && p != nil
}

func AuthMethodFromContext(c *gin.Context) string {
	v, ok := c.Get(ctxAuthMethod)

	if !ok {
		return ""
	}

	s, _ := v.(string)

	return s
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")

	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
