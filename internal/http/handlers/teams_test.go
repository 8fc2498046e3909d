package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/domain/user"
	"github.com/rosterhub/rosterhub/internal/http/handlers"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
	"github.com/rosterhub/rosterhub/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake registry in the consumer-interface shape the handler expects.

type fakeRegistry struct {
	createTeamFn   func(ctx context.Context, name, logoURL, creatorID string) (team.Team, error)
	validateFn     func(ctx context.Context, code string) (team.PublicInfo, bool, error)
	regenerateFn   func(ctx context.Context, teamID string) (string, error)
	joinByCodeFn   func(ctx context.Context, userID, code string) (team.Team, team.Membership, error)
	createMemberFn func(ctx context.Context, teamID, userID, role string) (team.Membership, error)
}

func (f *fakeRegistry) CreateTeam(ctx context.Context, name, logoURL, creatorID string) (team.Team, error) {
	if f.createTeamFn != nil {
		return f.createTeamFn(ctx, name, logoURL, creatorID)
	}
	return team.Team{}, nil
}

func (f *fakeRegistry) ValidateJoinCode(ctx context.Context, code string) (team.PublicInfo, bool, error) {
	if f.validateFn != nil {
		return f.validateFn(ctx, code)
	}
	return team.PublicInfo{}, false, nil
}

func (f *fakeRegistry) RegenerateJoinCode(ctx context.Context, teamID string) (string, error) {
	if f.regenerateFn != nil {
		return f.regenerateFn(ctx, teamID)
	}
	return "", nil
}

func (f *fakeRegistry) JoinByCode(ctx context.Context, userID, code string) (team.Team, team.Membership, error) {
	if f.joinByCodeFn != nil {
		return f.joinByCodeFn(ctx, userID, code)
	}
	return team.Team{}, team.Membership{}, nil
}

func (f *fakeRegistry) CreateMembership(ctx context.Context, teamID, userID, role string) (team.Membership, error) {
	if f.createMemberFn != nil {
		return f.createMemberFn(ctx, teamID, userID, role)
	}
	return team.Membership{}, nil
}

type fakeTeamReader struct {
	getFn func(ctx context.Context, id string) (team.Team, error)
}

func (f *fakeTeamReader) GetByID(ctx context.Context, id string) (team.Team, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return team.Team{}, team.ErrNotFound
}

// sessionFor authenticates every request carrying a "sid" cookie as the given
// user, through the real auth middleware.
type staticResolver struct {
	u user.User
}

func (r staticResolver) Resolve(ctx context.Context, sessionID string) (user.User, error) {
	if sessionID == "" {
		return user.User{}, session.ErrNoSession
	}
	return r.u, nil
}

func (r staticResolver) FreshUser(ctx context.Context, userID string) (user.User, error) {
	return r.u, nil
}

func teamsTestRouter(h *handlers.TeamsHandler, u user.User) *gin.Engine {
	mw := middlewares.NewAuthMiddleware(staticResolver{u: u}, nil, nil)

	r := gin.New()
	r.Use(mw.Authenticate())

	r.POST("/teams", h.Create)
	r.POST("/teams/join", h.Join)
	r.GET("/validate-join-code/:code", h.ValidateCode)

	return r
}

func authedPost(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: "sid-1"})
	return req
}

func TestCreateTeamUsesCallerAsCreator(t *testing.T) {
	var gotCreator string

	registry := &fakeRegistry{
		createTeamFn: func(_ context.Context, name, logoURL, creatorID string) (team.Team, error) {
			gotCreator = creatorID
			return team.Team{ID: "t1", Name: name, CreatedByID: creatorID, JoinCode: "ABC234"}, nil
		},
	}

	h := handlers.NewTeamsHandler(registry, &fakeTeamReader{})
	r := teamsTestRouter(h, user.User{ID: "u1", Username: "pat"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedPost("/teams", `{"name":"Tigers"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	if gotCreator != "u1" {
		t.Fatalf("creator = %q, want u1", gotCreator)
	}

	if !strings.Contains(w.Body.String(), "Tigers") {
		t.Fatalf("body %q missing team name", w.Body.String())
	}
}

func TestCreateTeamRejectsBadBody(t *testing.T) {
	h := handlers.NewTeamsHandler(&fakeRegistry{}, &fakeTeamReader{})
	r := teamsTestRouter(h, user.User{ID: "u1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedPost("/teams", `{"name":""}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
}

func TestJoinByCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"success", nil, http.StatusOK, ""},
		{"unknown code", team.ErrNotFound, http.StatusNotFound, "not_found"},
		{"already a member", team.ErrAlreadyMember, http.StatusConflict, "already_member"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := &fakeRegistry{
				joinByCodeFn: func(_ context.Context, userID, code string) (team.Team, team.Membership, error) {
					if tt.err != nil {
						return team.Team{}, team.Membership{}, tt.err
					}
					return team.Team{ID: "t1", Name: "Tigers"},
						team.Membership{TeamID: "t1", UserID: userID, Role: team.RolePlayer}, nil
				},
			}

			h := handlers.NewTeamsHandler(registry, &fakeTeamReader{})
			r := teamsTestRouter(h, user.User{ID: "u1"})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, authedPost("/teams/join", `{"code":"ABC234"}`))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantCode != "" && !strings.Contains(w.Body.String(), tt.wantCode) {
				t.Fatalf("body %q missing code %q", w.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestValidateJoinCodeIsPublicAndLimited(t *testing.T) {
	registry := &fakeRegistry{
		validateFn: func(_ context.Context, code string) (team.PublicInfo, bool, error) {
			if code != "ABC234" {
				return team.PublicInfo{}, false, nil
			}
			return team.PublicInfo{ID: "t1", Name: "Tigers"}, true, nil
		},
	}

	h := handlers.NewTeamsHandler(registry, &fakeTeamReader{})
	r := teamsTestRouter(h, user.User{})

	// no session cookie at all
	req := httptest.NewRequest(http.MethodGet, "/validate-join-code/abc234", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var body struct {
		Valid bool            `json:"valid"`
		Team  json.RawMessage `json:"team"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !body.Valid {
		t.Fatalf("valid = false, want true")
	}

	if strings.Contains(string(body.Team), "joinCode") {
		t.Fatalf("public team card leaked the join code: %s", body.Team)
	}

	// unknown code answers valid=false, same shape, no probing signal
	req = httptest.NewRequest(http.MethodGet, "/validate-join-code/ZZZZ99", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"valid":false`) {
		t.Fatalf("unknown code: status %d body %s", w.Code, w.Body.String())
	}
}

func TestRegenerateJoinCodeExhaustion(t *testing.T) {
	registry := &fakeRegistry{
		regenerateFn: func(_ context.Context, teamID string) (string, error) {
			return "", errors.New("could not generate a unique join code")
		},
	}

	h := handlers.NewTeamsHandler(registry, &fakeTeamReader{})

	r := gin.New()
	r.POST("/teams/:id/join-code", h.RegenerateCode)

	req := httptest.NewRequest(http.MethodPost, "/teams/t1/join-code", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
