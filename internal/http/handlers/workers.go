package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type WorkerService interface {
	ListWorkers(ctx context.Context, caller access.Caller) (company.Company, []user.User, error)
	GetWorker(ctx context.Context, caller access.Caller, id string) (company.Company, user.User, error)
	CreateUser(ctx context.Context, caller access.Caller, req user.CreateRequest) (user.User, error)
}

// WorkersHandler serves the owner's view of its company's users. Only
// GET, HEAD and POST are routed here.
type WorkersHandler struct {
	svc   WorkerService
	authz ObjectAuthorizer
	log   *slog.Logger
}

func NewWorkersHandler(svc WorkerService, authz ObjectAuthorizer, log *slog.Logger) *WorkersHandler {
	return &WorkersHandler{svc: svc, authz: authz, log: log}
}

func (h *WorkersHandler) ListWorkers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, workers, err := h.svc.ListWorkers(cctx, middlewares.CallerFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, h.log, "list_workers", err)
		return
	}

	if !h.authorize(ctx, access.ActionList, c) {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": workers,
		"count": len(workers),
	})
}

func (h *WorkersHandler) CreateWorker(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.CreateUser(cctx, middlewares.CallerFromContext(ctx), req)
	if err != nil {
		RespondServiceError(ctx, h.log, "create_worker", err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *WorkersHandler) GetWorker(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, u, err := h.svc.GetWorker(cctx, middlewares.CallerFromContext(ctx), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, "get_worker", err)
		return
	}

	if !h.authorize(ctx, access.ActionRetrieve, c) {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

// the object of this endpoint is the owned company, not the worker
func (h *WorkersHandler) authorize(ctx *gin.Context, action access.Action, c company.Company) bool {
	err := h.authz.AuthorizeObject(access.EndpointWorkers, accessRequest(ctx, action), access.CompanyObject(c))
	if err != nil {
		RespondServiceError(ctx, h.log, "authorize_workers", err)
		return false
	}

	return true
}
