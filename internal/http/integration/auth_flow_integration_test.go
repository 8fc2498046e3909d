package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/auth"
	"github.com/rosterhub/rosterhub/internal/cache"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/csrf"
	apphttp "github.com/rosterhub/rosterhub/internal/http"
	"github.com/rosterhub/rosterhub/internal/http/handlers"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
	"github.com/rosterhub/rosterhub/internal/repo/memory"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/session"
	"github.com/rosterhub/rosterhub/internal/teams"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestApp wires the full router over in-memory stores, the same shape
// main uses minus postgres, redis and the metrics registry.
func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := config.Config{
		Env:         "test",
		SessionTTL:  time.Hour,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		HashWorkers: 2,
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	usersRepo := memory.NewUsersRepo()
	teamsRepo := memory.NewTeamsRepo()
	membershipsRepo := memory.NewMembershipsRepo()
	matchesRepo := memory.NewMatchesRepo()
	announcementsRepo := memory.NewAnnouncementsRepo()
	sessionsRepo := memory.NewSessionsRepo()

	hasher := security.NewHasher(cfg.HashWorkers)
	sessions := session.NewManager(usersRepo, sessionsRepo, hasher, log, cfg.SessionTTL)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	registry := teams.NewRegistry(teamsRepo, membershipsRepo, log, cache.New(time.Second))

	authMW := middlewares.NewAuthMiddleware(sessions, jwtManager, membershipsRepo)
	csrfMW := middlewares.NewCSRFMiddleware(log, nil)

	return apphttp.NewRouter(apphttp.RouterDeps{
		Cfg:  cfg,
		Auth: authMW,
		CSRF: csrfMW,

		AuthHandler:          handlers.NewAuthHandler(usersRepo, sessions, hasher, jwtManager, cfg.JWTTTL, cfg),
		TeamsHandler:         handlers.NewTeamsHandler(registry, teamsRepo),
		MembersHandler:       handlers.NewMembersHandler(registry, membershipsRepo, usersRepo),
		MatchesHandler:       handlers.NewMatchesHandler(matchesRepo),
		AnnouncementsHandler: handlers.NewAnnouncementsHandler(announcementsRepo),
		AdminHandler:         handlers.NewAdminHandler(usersRepo, teamsRepo),
		HealthHandler:        handlers.NewHealthHandler(nil, nil),
	})
}

// client carries cookies between requests like a browser would.
type client struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, r *gin.Engine) *client {
	return &client{t: t, r: r, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(method, target, body string, withCSRF bool) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	if withCSRF {
		if ck, ok := c.cookies[csrf.CookieName]; ok {
			req.Header.Set(csrf.HeaderName, ck.Value)
		}
	}

	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}

	return w
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	r := newTestApp(t)
	c := newClient(t, r)

	// register
	w := c.do(http.MethodPost, "/auth/register",
		`{"username":"alice","password":"correct horse battery"}`, false)

	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d (body %s)", w.Code, w.Body.String())
	}

	if strings.Contains(w.Body.String(), "passwordHash") {
		t.Fatalf("register response leaked the password hash: %s", w.Body.String())
	}

	// duplicate username
	w = c.do(http.MethodPost, "/auth/register",
		`{"username":"alice","password":"another password!"}`, false)

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "username_taken") {
		t.Fatalf("duplicate register: status %d body %s", w.Code, w.Body.String())
	}

	// login sets the session and csrf cookies
	w = c.do(http.MethodPost, "/auth/login",
		`{"username":"alice","password":"correct horse battery"}`, false)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d (body %s)", w.Code, w.Body.String())
	}

	if _, ok := c.cookies[middlewares.SessionCookieName]; !ok {
		t.Fatalf("login did not set the session cookie")
	}

	if _, ok := c.cookies[csrf.CookieName]; !ok {
		t.Fatalf("login did not set the csrf cookie")
	}

	// who am I
	w = c.do(http.MethodGet, "/user", "", false)

	if w.Code != http.StatusOK {
		t.Fatalf("/user status = %d (body %s)", w.Code, w.Body.String())
	}

	var me struct {
		User map[string]any `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("unmarshal /user: %v", err)
	}

	if me.User["username"] != "alice" {
		t.Fatalf("username = %v, want alice", me.User["username"])
	}

	if _, leaked := me.User["passwordHash"]; leaked {
		t.Fatalf("/user leaked the password hash")
	}

	// state change without the csrf header is rejected
	w = c.do(http.MethodPost, "/auth/logout", "", false)

	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), "csrf_mismatch") {
		t.Fatalf("logout without csrf: status %d body %s", w.Code, w.Body.String())
	}

	// and with it, the session dies server-side
	sid := c.cookies[middlewares.SessionCookieName].Value

	w = c.do(http.MethodPost, "/auth/logout", "", true)

	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d (body %s)", w.Code, w.Body.String())
	}

	// replaying the old session id resolves to anonymous
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: sid})

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("replayed session: status %d, want 401 (body %s)", w2.Code, w2.Body.String())
	}
}

func TestWrongPasswordIsUnauthorized(t *testing.T) {
	r := newTestApp(t)
	c := newClient(t, r)

	c.do(http.MethodPost, "/auth/register",
		`{"username":"bob","password":"a perfectly fine pw"}`, false)

	w := c.do(http.MethodPost, "/auth/login",
		`{"username":"bob","password":"not the password"}`, false)

	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "invalid_credentials") {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	// unknown user reads identically
	w = c.do(http.MethodPost, "/auth/login",
		`{"username":"nobody","password":"not the password"}`, false)

	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "invalid_credentials") {
		t.Fatalf("unknown user: status %d body %s", w.Code, w.Body.String())
	}
}

func TestTeamLifecycleThroughRouter(t *testing.T) {
	r := newTestApp(t)

	// coach-to-be creates the team and becomes its admin
	owner := newClient(t, r)
	owner.do(http.MethodPost, "/auth/register", `{"username":"owner","password":"password-owner1"}`, false)
	owner.do(http.MethodPost, "/auth/login", `{"username":"owner","password":"password-owner1"}`, false)

	w := owner.do(http.MethodPost, "/teams", `{"name":"Tigers"}`, true)

	if w.Code != http.StatusCreated {
		t.Fatalf("create team: status %d body %s", w.Code, w.Body.String())
	}

	var created struct {
		Team struct {
			ID       string `json:"id"`
			JoinCode string `json:"joinCode"`
		} `json:"team"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal team: %v", err)
	}

	if len(created.Team.JoinCode) != teams.JoinCodeLength {
		t.Fatalf("join code %q, want length %d", created.Team.JoinCode, teams.JoinCodeLength)
	}

	// owner is admin: can regenerate the code
	w = owner.do(http.MethodPost, "/teams/"+created.Team.ID+"/join-code", "", true)

	if w.Code != http.StatusOK {
		t.Fatalf("regenerate: status %d body %s", w.Code, w.Body.String())
	}

	var regen struct {
		JoinCode string `json:"joinCode"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &regen); err != nil {
		t.Fatalf("unmarshal joinCode: %v", err)
	}

	// second user joins with the fresh code, lands as a player
	player := newClient(t, r)
	player.do(http.MethodPost, "/auth/register", `{"username":"pat","password":"password-pat123"}`, false)
	player.do(http.MethodPost, "/auth/login", `{"username":"pat","password":"password-pat123"}`, false)

	w = player.do(http.MethodPost, "/teams/join", `{"code":"`+regen.JoinCode+`"}`, true)

	if w.Code != http.StatusOK {
		t.Fatalf("join: status %d body %s", w.Code, w.Body.String())
	}

	// player can read matches but not create them
	w = player.do(http.MethodGet, "/teams/"+created.Team.ID+"/matches", "", false)

	if w.Code != http.StatusOK {
		t.Fatalf("player list matches: status %d body %s", w.Code, w.Body.String())
	}

	w = player.do(http.MethodPost, "/teams/"+created.Team.ID+"/matches",
		`{"opponent":"Rovers","kickoffAt":"2026-10-04T15:00:00Z"}`, true)

	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), "insufficient_role") {
		t.Fatalf("player create match: status %d body %s", w.Code, w.Body.String())
	}

	// the admin can
	w = owner.do(http.MethodPost, "/teams/"+created.Team.ID+"/matches",
		`{"opponent":"Rovers","kickoffAt":"2026-10-04T15:00:00Z"}`, true)

	if w.Code != http.StatusCreated {
		t.Fatalf("owner create match: status %d body %s", w.Code, w.Body.String())
	}

	// an outsider is not a member
	outsider := newClient(t, r)
	outsider.do(http.MethodPost, "/auth/register", `{"username":"oli","password":"password-oli456"}`, false)
	outsider.do(http.MethodPost, "/auth/login", `{"username":"oli","password":"password-oli456"}`, false)

	w = outsider.do(http.MethodGet, "/teams/"+created.Team.ID+"/matches", "", false)

	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), "not_a_member") {
		t.Fatalf("outsider: status %d body %s", w.Code, w.Body.String())
	}
}

func TestBearerTokenFlow(t *testing.T) {
	r := newTestApp(t)
	c := newClient(t, r)

	c.do(http.MethodPost, "/auth/register", `{"username":"api","password":"password-api789"}`, false)
	c.do(http.MethodPost, "/auth/login", `{"username":"api","password":"password-api789"}`, false)

	w := c.do(http.MethodPost, "/auth/token", "", true)

	if w.Code != http.StatusOK {
		t.Fatalf("issue token: status %d body %s", w.Code, w.Body.String())
	}

	var tok struct {
		AccessToken string `json:"accessToken"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &tok); err != nil {
		t.Fatalf("unmarshal token: %v", err)
	}

	// token works without any cookies, and without csrf
	req := httptest.NewRequest(http.MethodPost, "/teams", bytes.NewBufferString(`{"name":"API FC"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusCreated {
		t.Fatalf("bearer create team: status %d body %s", w2.Code, w2.Body.String())
	}
}
