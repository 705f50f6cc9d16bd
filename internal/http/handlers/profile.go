package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ProfileService interface {
	GetUser(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, targetID string, req user.ProfileUpdateRequest, partial bool) (user.User, error)
}

type ProfileHandler struct {
	svc   ProfileService
	authz ObjectAuthorizer
	log   *slog.Logger
}

func NewProfileHandler(svc ProfileService, authz ObjectAuthorizer, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, authz: authz, log: log}
}

// UpdateProfile serves PUT and PATCH /profile_update/:id/. The old password
// is always required.
func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	var req user.ProfileUpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	action, partial := memberAction(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	target, err := h.svc.GetUser(cctx, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, "get_profile", err)
		return
	}

	if err := h.authz.AuthorizeObject(access.EndpointProfileUpdate, accessRequest(ctx, action), access.UserObject(target)); err != nil {
		RespondServiceError(ctx, h.log, "authorize_profile", err)
		return
	}

	u, err := h.svc.UpdateProfile(cctx, target.ID, req, partial)
	if err != nil {
		RespondServiceError(ctx, h.log, "update_profile", err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}
