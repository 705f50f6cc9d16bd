package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	CreateUser(ctx context.Context, caller access.Caller, req user.CreateRequest) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUser(ctx context.Context, id string, req user.UpdateRequest, partial bool) (user.User, error)
	DeactivateUser(ctx context.Context, id string) error
}

type UsersHandler struct {
	svc   UserService
	authz ObjectAuthorizer
	log   *slog.Logger
}

func NewUsersHandler(svc UserService, authz ObjectAuthorizer, log *slog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, authz: authz, log: log}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.svc.ListUsers(cctx)
	if err != nil {
		RespondServiceError(ctx, h.log, "list_users", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

// CreateUser registers an account; the caller decides whether it becomes a
// new tenant admin or a worker of the caller's company.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.CreateUser(cctx, middlewares.CallerFromContext(ctx), req)
	if err != nil {
		RespondServiceError(ctx, h.log, "create_user", err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, ok := h.load(ctx, cctx, access.ActionRetrieve)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

// UpdateUser serves PUT and PATCH.
func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	action, partial := memberAction(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	target, ok := h.load(ctx, cctx, action)
	if !ok {
		return
	}

	u, err := h.svc.UpdateUser(cctx, target.ID, req, partial)
	if err != nil {
		RespondServiceError(ctx, h.log, "update_user", err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	target, ok := h.load(ctx, cctx, access.ActionDestroy)
	if !ok {
		return
	}

	if err := h.svc.DeactivateUser(cctx, target.ID); err != nil {
		RespondServiceError(ctx, h.log, "deactivate_user", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) load(ctx *gin.Context, cctx context.Context, action access.Action) (user.User, bool) {
	u, err := h.svc.GetUser(cctx, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, "get_user", err)
		return user.User{}, false
	}

	if err := h.authz.AuthorizeObject(access.EndpointUsers, accessRequest(ctx, action), access.UserObject(u)); err != nil {
		RespondServiceError(ctx, h.log, "authorize_user", err)
		return user.User{}, false
	}

	return u, true
}
