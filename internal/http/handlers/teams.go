package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
	"github.com/rosterhub/rosterhub/internal/teams"
)

// TeamRegistry is the slice of the team registry the handler needs.
type TeamRegistry interface {
	CreateTeam(ctx context.Context, name, logoURL, creatorID string) (team.Team, error)
	ValidateJoinCode(ctx context.Context, code string) (team.PublicInfo, bool, error)
	RegenerateJoinCode(ctx context.Context, teamID string) (string, error)
	JoinByCode(ctx context.Context, userID, code string) (team.Team, team.Membership, error)
}

type TeamReader interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
}

type TeamsHandler struct {
	registry TeamRegistry
	reader   TeamReader
}

func NewTeamsHandler(registry TeamRegistry, reader TeamReader) *TeamsHandler {
	return &TeamsHandler{
		registry: registry,
		reader:   reader,
	}
}

type CreateTeamRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=120"`
	LogoURL string `json:"logoUrl" binding:"omitempty,url,max=500"`
}

type JoinTeamRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *TeamsHandler) Create(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req CreateTeamRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.registry.CreateTeam(cctx, req.Name, req.LogoURL, p.User.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create team")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"team": t})
}

func (h *TeamsHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.reader.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			RespondNotFound(ctx, "Team not found")
			return
		}

		RespondInternal(ctx, "Could not load team")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"team": t})
}

func (h *TeamsHandler) Join(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req JoinTeamRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, m, err := h.registry.JoinByCode(cctx, p.User.ID, req.Code)

	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			RespondNotFound(ctx, "No team matches that join code")
			return
		}

		if errors.Is(err, team.ErrAlreadyMember) {
			RespondConflict(ctx, "already_member", "You are already a member of this team.")
			return
		}

		RespondInternal(ctx, "Could not join team")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"team":       t,
		"membership": m,
	})
}

// ValidateCode is public: share links hit it before the viewer has an
// account. It leaks nothing beyond the team's public card.
func (h *TeamsHandler) ValidateCode(ctx *gin.Context) {
	code := teams.NormalizeJoinCode(ctx.Param("code"))

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	info, ok, err := h.registry.ValidateJoinCode(cctx, code)

	if err != nil {
		RespondInternal(ctx, "Could not validate join code")
		return
	}

	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"valid": true,
		"team":  info,
	})
}

func (h *TeamsHandler) RegenerateCode(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	code, err := h.registry.RegenerateJoinCode(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			RespondNotFound(ctx, "Team not found")
			return
		}

		RespondInternal(ctx, "Could not regenerate join code")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"joinCode": code})
}
