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

type CompanyService interface {
	CreateCompany(ctx context.Context, caller access.Caller, req company.CreateRequest) (company.Company, error)
	ListCompanies(ctx context.Context, caller access.Caller) ([]company.Company, error)
	GetCompany(ctx context.Context, caller access.Caller, id string) (company.Company, error)
	UpdateCompany(ctx context.Context, caller access.Caller, id string, req company.UpdateRequest) (company.Company, error)
	DeleteCompany(ctx context.Context, caller access.Caller, id string) error
}

type CompaniesHandler struct {
	svc   CompanyService
	authz ObjectAuthorizer
	log   *slog.Logger
}

func NewCompaniesHandler(svc CompanyService, authz ObjectAuthorizer, log *slog.Logger) *CompaniesHandler {
	return &CompaniesHandler{svc: svc, authz: authz, log: log}
}

func (h *CompaniesHandler) ListCompanies(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	companies, err := h.svc.ListCompanies(cctx, middlewares.CallerFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, h.log, "list_companies", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": companies,
		"count": len(companies),
	})
}

func (h *CompaniesHandler) CreateCompany(ctx *gin.Context) {
	var req company.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	c, err := h.svc.CreateCompany(cctx, middlewares.CallerFromContext(ctx), req)
	if err != nil {
		RespondServiceError(ctx, h.log, "create_company", err)
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CompaniesHandler) GetCompany(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, ok := h.load(ctx, cctx, access.ActionRetrieve)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, c)
}

// UpdateCompany serves PUT and PATCH; both only touch the fields sent.
func (h *CompaniesHandler) UpdateCompany(ctx *gin.Context) {
	var req company.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	action, _ := memberAction(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	target, ok := h.load(ctx, cctx, action)
	if !ok {
		return
	}

	c, err := h.svc.UpdateCompany(cctx, middlewares.CallerFromContext(ctx), target.ID, req)
	if err != nil {
		RespondServiceError(ctx, h.log, "update_company", err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CompaniesHandler) DeleteCompany(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	target, ok := h.load(ctx, cctx, access.ActionDestroy)
	if !ok {
		return
	}

	if err := h.svc.DeleteCompany(cctx, middlewares.CallerFromContext(ctx), target.ID); err != nil {
		RespondServiceError(ctx, h.log, "delete_company", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// load resolves the company within the caller's scope and runs the object
// gate for action.
func (h *CompaniesHandler) load(ctx *gin.Context, cctx context.Context, action access.Action) (company.Company, bool) {
	c, err := h.svc.GetCompany(cctx, middlewares.CallerFromContext(ctx), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, "get_company", err)
		return company.Company{}, false
	}

	if err := h.authz.AuthorizeObject(access.EndpointCompany, accessRequest(ctx, action), access.CompanyObject(c)); err != nil {
		RespondServiceError(ctx, h.log, "authorize_company", err)
		return company.Company{}, false
	}

	return c, true
}
