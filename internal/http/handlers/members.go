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

type MembershipService interface {
	CreateMembership(ctx context.Context, teamID, userID, role string) (team.Membership, error)
}

type MembershipStore interface {
	ListByTeam(ctx context.Context, teamID string) ([]team.Membership, error)
	UpdateRole(ctx context.Context, teamID, userID, role string) error
	Delete(ctx context.Context, teamID, userID string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type MembersHandler struct {
	registry    MembershipService
	memberships MembershipStore
	users       UserLookup
}

func NewMembersHandler(registry MembershipService, memberships MembershipStore, users UserLookup) *MembersHandler {
	return &MembersHandler{
		registry:    registry,
		memberships: memberships,
		users:       users,
	}
}

// MemberView joins the membership row with the user fields a roster needs.
type MemberView struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	FullName string    `json:"fullName,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=player coach admin"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=player coach admin"`
}

func (h *MembersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rows, err := h.memberships.ListByTeam(cctx, ctx.Param("id"))

	if err != nil {
		RespondInternal(ctx, "Could not list members")
		return
	}

	members := make([]MemberView, 0, len(rows))

	for _, m := range rows {
		view := MemberView{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		}

		// membership rows can outlive a deleted user; show what we have
		if u, err := h.users.GetByID(cctx, m.UserID); err == nil {
			view.Username = u.Username
			view.FullName = u.FullName
		}

		members = append(members, view)
	}

	ctx.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *MembersHandler) Add(ctx *gin.Context) {
	var req AddMemberRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByUsername(cctx, req.Username)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not add member")
		return
	}

	m, err := h.registry.CreateMembership(cctx, ctx.Param("id"), u.ID, req.Role)

	if err != nil {
		if errors.Is(err, team.ErrAlreadyMember) {
			RespondConflict(ctx, "already_member", "User is already a member of this team.")
			return
		}

		RespondInternal(ctx, "Could not add member")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"membership": m})
}

func (h *MembersHandler) UpdateRole(ctx *gin.Context) {
	var req UpdateMemberRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.memberships.UpdateRole(cctx, ctx.Param("id"), ctx.Param("userId"), req.Role)

	if err != nil {
		if errors.Is(err, team.ErrMembershipNotFound) {
			RespondNotFound(ctx, "Membership not found")
			return
		}

		RespondInternal(ctx, "Could not update member role")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *MembersHandler) Remove(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.memberships.Delete(cctx, ctx.Param("id"), ctx.Param("userId"))

	if err != nil {
		if errors.Is(err, team.ErrMembershipNotFound) {
			RespondNotFound(ctx, "Membership not found")
			return
		}

		RespondInternal(ctx, "Could not remove member")
		return
	}

	ctx.Status(http.StatusNoContent)
}
