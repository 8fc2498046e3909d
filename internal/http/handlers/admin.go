package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/domain/team"
	"github.com/rosterhub/rosterhub/internal/domain/user"
)

type UserAdminStore interface {
	List(ctx context.Context) ([]user.User, error)
	UpdateRole(ctx context.Context, id, role string) error
}

type TeamAdminStore interface {
	List(ctx context.Context) ([]team.Team, error)
}

// AdminHandler backs the superuser panel. Every route here sits behind the
// superuser global-role guard.
type AdminHandler struct {
	users UserAdminStore
	teams TeamAdminStore
}

func NewAdminHandler(users UserAdminStore, teams TeamAdminStore) *AdminHandler {
	return &AdminHandler{
		users: users,
		teams: teams,
	}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=player coach admin superuser"`
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) ListTeams(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	teams, err := h.teams.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list teams")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *AdminHandler) UpdateUserRole(ctx *gin.Context) {
	var req UpdateUserRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.users.UpdateRole(cctx, ctx.Param("userId"), req.Role)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user role")
		return
	}

	ctx.Status(http.StatusNoContent)
}
