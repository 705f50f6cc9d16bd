package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type OfficeService interface {
	GetCompany(ctx context.Context, caller access.Caller, id string) (company.Company, error)
	ListOffices(ctx context.Context, companyID string) ([]company.Office, error)
	CreateOffice(ctx context.Context, req company.CreateOfficeRequest) (company.Office, error)
	GetOffice(ctx context.Context, companyID, officeID string) (company.Office, error)
	DeleteOffice(ctx context.Context, companyID, officeID string) error
}

type OfficesHandler struct {
	svc   OfficeService
	authz ObjectAuthorizer
	log   *slog.Logger
}

func NewOfficesHandler(svc OfficeService, authz ObjectAuthorizer, log *slog.Logger) *OfficesHandler {
	return &OfficesHandler{svc: svc, authz: authz, log: log}
}

func (h *OfficesHandler) ListOffices(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, ok := h.company(ctx, cctx, access.ActionList)
	if !ok {
		return
	}

	offices, err := h.svc.ListOffices(cctx, c.ID)
	if err != nil {
		RespondServiceError(ctx, h.log, "list_offices", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": offices,
		"count": len(offices),
	})
}

func (h *OfficesHandler) CreateOffice(ctx *gin.Context) {
	var req company.CreateOfficeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	c, ok := h.company(ctx, cctx, access.ActionCreate)
	if !ok {
		return
	}

	req.CompanyID = c.ID

	o, err := h.svc.CreateOffice(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, "create_office", err)
		return
	}

	ctx.JSON(http.StatusCreated, o)
}

func (h *OfficesHandler) GetOffice(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, ok := h.company(ctx, cctx, access.ActionRetrieve)
	if !ok {
		return
	}

	o, err := h.svc.GetOffice(cctx, c.ID, ctx.Param("officeId"))
	if err != nil {
		RespondServiceError(ctx, h.log, "get_office", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, o)
}

func (h *OfficesHandler) DeleteOffice(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, ok := h.company(ctx, cctx, access.ActionDestroy)
	if !ok {
		return
	}

	if err := h.svc.DeleteOffice(cctx, c.ID, ctx.Param("officeId")); err != nil {
		RespondServiceError(ctx, h.log, "delete_office", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// company resolves the parent company in the caller's scope and gates the
// office action against it.
func (h *OfficesHandler) company(ctx *gin.Context, cctx context.Context, action access.Action) (company.Company, bool) {
	c, err := h.svc.GetCompany(cctx, middlewares.CallerFromContext(ctx), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, "get_company", err)
		return company.Company{}, false
	}

	if err := h.authz.AuthorizeObject(access.EndpointOffices, accessRequest(ctx, action), access.CompanyObject(c)); err != nil {
		RespondServiceError(ctx, h.log, "authorize_offices", err)
		return company.Company{}, false
	}

	return c, true
}
