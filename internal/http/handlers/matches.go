package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/domain/match"
)

type MatchStore interface {
	Create(ctx context.Context, teamID string, req match.CreateMatchRequest) (match.Match, error)
	GetByID(ctx context.Context, id string) (match.Match, error)
	ListByTeam(ctx context.Context, teamID string) ([]match.Match, error)
	Update(ctx context.Context, id string, req match.UpdateMatchRequest) (match.Match, error)
	Delete(ctx context.Context, id string) error
}

type MatchesHandler struct {
	matches MatchStore
}

func NewMatchesHandler(matches MatchStore) *MatchesHandler {
	return &MatchesHandler{matches: matches}
}

func (h *MatchesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rows, err := h.matches.ListByTeam(cctx, ctx.Param("id"))

	if err != nil {
		RespondInternal(ctx, "Could not list matches")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"matches": rows})
}

func (h *MatchesHandler) Create(ctx *gin.Context) {
	var req match.CreateMatchRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, err := h.matches.Create(cctx, ctx.Param("id"), req)

	if err != nil {
		RespondInternal(ctx, "Could not create match")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"match": m})
}

func (h *MatchesHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, ok := h.loadInTeam(ctx, cctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"match": m})
}

func (h *MatchesHandler) Update(ctx *gin.Context) {
	var req match.UpdateMatchRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, ok := h.loadInTeam(ctx, cctx)

	if !ok {
		return
	}

	updated, err := h.matches.Update(cctx, m.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not update match")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"match": updated})
}

func (h *MatchesHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, ok := h.loadInTeam(ctx, cctx)

	if !ok {
		return
	}

	if err := h.matches.Delete(cctx, m.ID); err != nil {
		RespondInternal(ctx, "Could not delete match")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// loadInTeam fetches the match and checks it belongs to the team in the URL.
// A match from another team answers 404, identical to a missing one, so ids
// cannot be probed across tenants.
func (h *MatchesHandler) loadInTeam(ctx *gin.Context, cctx context.Context) (match.Match, bool) {
	m, err := h.matches.GetByID(cctx, ctx.Param("matchId"))

	if err != nil {
		if errors.Is(err, match.ErrNotFound) {
			RespondNotFound(ctx, "Match not found")
			return match.Match{}, false
		}

		RespondInternal(ctx, "Could not load match")
		return match.Match{}, false
	}

	if m.TeamID != ctx.Param("id") {
		RespondNotFound(ctx, "Match not found")
		return match.Match{}, false
	}

	return m, true
}
