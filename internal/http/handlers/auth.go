package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/csrf"
	"github.com/rosterhub/rosterhub/internal/domain/user"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/session"
)

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

// SessionService is the slice of the session manager the handler needs.
type SessionService interface {
	Login(ctx context.Context, username, password string) (user.User, session.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, error)
}

type LoginMetrics interface {
	IncLogin(outcome string)
}

type noopLoginMetrics struct{}

func (noopLoginMetrics) IncLogin(string) {}

type AuthHandler struct {
	users    UserWriter
	sessions SessionService
	hasher   *security.Hasher
	jwt      TokenIssuer
	jwtTTL   time.Duration
	metrics  LoginMetrics
	cfg      config.Config
}

func NewAuthHandler(users UserWriter, sessions SessionService, hasher *security.Hasher, jwt TokenIssuer, jwtTTL time.Duration, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		jwt:      jwt,
		jwtTTL:   jwtTTL,
		metrics:  noopLoginMetrics{},
		cfg:      cfg,
	}
}

func (h *AuthHandler) WithMetrics(m LoginMetrics) *AuthHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=40"`
	Password string `json:"password" binding:"required,min=8,max=200"`
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"fullName" binding:"omitempty,max=120"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := h.hasher.Hash(ctx.Request.Context(), req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.Create(cctx, user.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         user.RolePlayer,
		Email:        req.Email,
		FullName:     req.FullName,
	})

	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondError(ctx, http.StatusBadRequest, "username_taken", "Username is already taken.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, s, err := h.sessions.Login(ctx.Request.Context(), req.Username, req.Password)

	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.metrics.IncLogin("invalid_credentials")
			RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
			return
		}

		h.metrics.IncLogin("error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	h.metrics.IncLogin("ok")
	h.setSessionCookie(ctx, s)

	// a fresh CSRF token pairs with the new session
	if token, err := csrf.IssueToken(); err == nil {
		h.setCSRFCookie(ctx, token)
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	if sid, err := ctx.Cookie(middlewares.SessionCookieName); err == nil && sid != "" {
		if err := h.sessions.Logout(ctx.Request.Context(), sid); err != nil {
			RespondInternal(ctx, "Could not log out")
			return
		}
	}

	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the caller's own record, hash excluded by the json tag.
func (h *AuthHandler) Me(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": p.User})
}

// CSRFToken issues the double-submit pair: the token goes out both as a
// readable cookie and in the body, and the client echoes it in a header.
func (h *AuthHandler) CSRFToken(ctx *gin.Context) {
	token, err := csrf.IssueToken()

	if err != nil {
		RespondInternal(ctx, "Could not issue token")
		return
	}

	h.setCSRFCookie(ctx, token)
	ctx.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

// IssueToken mints a bearer token for API clients that cannot hold cookies.
func (h *AuthHandler) IssueToken(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	token, err := h.jwt.GenerateAccessToken(p.User.ID, p.User.Username)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expiresIn":   int(h.jwtTTL.Seconds()),
	})
}

// Cookie helpers

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, s session.Session) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(s.ExpiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		s.ID,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.SessionCookieName, "", -1, "/", "", secure, true)
}

func (h *AuthHandler) setCSRFCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	// not HttpOnly: the frontend must read this back into the header
	ctx.SetCookie(csrf.CookieName, token, 0, "/", "", secure, false)
}
