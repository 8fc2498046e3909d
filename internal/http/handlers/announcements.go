package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/domain/announcement"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
)

type AnnouncementStore interface {
	Create(ctx context.Context, teamID, authorID string, req announcement.CreateAnnouncementRequest) (announcement.Announcement, error)
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	ListByTeam(ctx context.Context, teamID string) ([]announcement.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type AnnouncementsHandler struct {
	announcements AnnouncementStore
}

func NewAnnouncementsHandler(announcements AnnouncementStore) *AnnouncementsHandler {
	return &AnnouncementsHandler{announcements: announcements}
}

func (h *AnnouncementsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rows, err := h.announcements.ListByTeam(cctx, ctx.Param("id"))

	if err != nil {
		RespondInternal(ctx, "Could not list announcements")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"announcements": rows})
}

func (h *AnnouncementsHandler) Create(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req announcement.CreateAnnouncementRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.announcements.Create(cctx, ctx.Param("id"), p.User.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create announcement")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"announcement": a})
}

func (h *AnnouncementsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.announcements.GetByID(cctx, ctx.Param("announcementId"))

	if err != nil {
		if errors.Is(err, announcement.ErrNotFound) {
			RespondNotFound(ctx, "Announcement not found")
			return
		}

		RespondInternal(ctx, "Could not load announcement")
		return
	}

	// same 404 for wrong team as for missing, no cross-team probing
	if a.TeamID != ctx.Param("id") {
		RespondNotFound(ctx, "Announcement not found")
		return
	}

	if err := h.announcements.Delete(cctx, a.ID); err != nil {
		RespondInternal(ctx, "Could not delete announcement")
		return
	}

	ctx.Status(http.StatusNoContent)
}
