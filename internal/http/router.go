package http

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/accounts"
	"github.com/geocoder89/tenanthub/internal/auth"
	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/http/handlers"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/geocoder89/tenanthub/internal/observability"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Store         repo.Store
	RefreshTokens auth.RefreshTokenStore
	// Limits backs the token endpoint rate limiter; nil keeps counters in
	// process.
	Limits   middlewares.WindowStore
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Ping     func(ctx context.Context) error
	// Accounts overrides the service built from Store (tests use a cheap
	// hasher).
	Accounts *accounts.Service
}

func NewRouter(log *slog.Logger, deps Deps, cfg config.Config) (*gin.Engine, error) {
	if deps.Store == nil || deps.RefreshTokens == nil {
		return nil, errors.New("router: store and refresh token store are required")
	}

	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.UseJSONFieldNames()

	table, err := access.DefaultTable(access.TableOptions{AllowAnonymousSignup: cfg.AllowAnonymousSignup})
	if err != nil {
		return nil, err
	}
	engine := access.NewEngine(table)

	svc := deps.Accounts
	if svc == nil {
		svc = accounts.NewService(deps.Store, log)
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = true

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("tenanthub-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	r.Use(middlewares.RequestLogger(log))

	authn := middlewares.NewAuthMiddleware(jwtManager, svc, log)
	r.Use(authn.Authenticate())

	r.NoMethod(func(ctx *gin.Context) {
		handlers.RespondError(ctx, nethttp.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Not found")
	})

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", observability.Handler(deps.Gatherer))
	}

	r.GET("/swagger", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPIDocument)

	// tokens
	limiter := middlewares.NewRateLimiter(deps.Limits, cfg.RateLimitTokenPerMin, time.Minute, log)
	tokens := handlers.NewTokensHandler(svc, jwtManager, deps.RefreshTokens, log)

	tokenGroup := r.Group("/token", limiter.Middleware("token", middlewares.KeyByIP))
	{
		tokenGroup.POST("/", tokens.Obtain)
		tokenGroup.POST("/refresh/", tokens.Refresh)
		tokenGroup.POST("/verify/", tokens.Verify)
	}
	r.POST("/verify/", limiter.Middleware("token", middlewares.KeyByIP), tokens.Verify)

	gate := func(ep access.Endpoint, action access.Action) gin.HandlerFunc {
		return middlewares.Authorize(engine, log, ep, action)
	}

	// users
	users := handlers.NewUsersHandler(svc, engine, log)
	r.GET("/users/", gate(access.EndpointUsers, access.ActionList), users.ListUsers)
	r.POST("/users/", gate(access.EndpointUsers, access.ActionCreate), users.CreateUser)
	r.GET("/users/:id/", gate(access.EndpointUsers, access.ActionRetrieve), users.GetUser)
	r.PUT("/users/:id/", gate(access.EndpointUsers, access.ActionUpdate), users.UpdateUser)
	r.PATCH("/users/:id/", gate(access.EndpointUsers, access.ActionPartialUpdate), users.UpdateUser)
	r.DELETE("/users/:id/", gate(access.EndpointUsers, access.ActionDestroy), users.DeleteUser)

	// companies
	companies := handlers.NewCompaniesHandler(svc, engine, log)
	r.GET("/company/", gate(access.EndpointCompany, access.ActionList), companies.ListCompanies)
	r.POST("/company/", gate(access.EndpointCompany, access.ActionCreate), companies.CreateCompany)
	r.GET("/company/:id/", gate(access.EndpointCompany, access.ActionRetrieve), companies.GetCompany)
	r.PUT("/company/:id/", gate(access.EndpointCompany, access.ActionUpdate), companies.UpdateCompany)
	r.PATCH("/company/:id/", gate(access.EndpointCompany, access.ActionPartialUpdate), companies.UpdateCompany)
	r.DELETE("/company/:id/", gate(access.EndpointCompany, access.ActionDestroy), companies.DeleteCompany)

	// offices
	offices := handlers.NewOfficesHandler(svc, engine, log)
	r.GET("/company/:id/offices/", gate(access.EndpointOffices, access.ActionList), offices.ListOffices)
	r.POST("/company/:id/offices/", gate(access.EndpointOffices, access.ActionCreate), offices.CreateOffice)
	r.GET("/company/:id/offices/:officeId/", gate(access.EndpointOffices, access.ActionRetrieve), offices.GetOffice)
	r.DELETE("/company/:id/offices/:officeId/", gate(access.EndpointOffices, access.ActionDestroy), offices.DeleteOffice)

	// workers: no update or delete verbs
	workers := handlers.NewWorkersHandler(svc, engine, log)
	r.GET("/workers/", gate(access.EndpointWorkers, access.ActionList), workers.ListWorkers)
	r.HEAD("/workers/", gate(access.EndpointWorkers, access.ActionList), workers.ListWorkers)
	r.POST("/workers/", gate(access.EndpointWorkers, access.ActionCreate), workers.CreateWorker)
	r.GET("/workers/:id/", gate(access.EndpointWorkers, access.ActionRetrieve), workers.GetWorker)
	r.HEAD("/workers/:id/", gate(access.EndpointWorkers, access.ActionRetrieve), workers.GetWorker)

	// profile
	profile := handlers.NewProfileHandler(svc, engine, log)
	r.PUT("/profile_update/:id/", gate(access.EndpointProfileUpdate, access.ActionUpdate), profile.UpdateProfile)
	r.PATCH("/profile_update/:id/", gate(access.EndpointProfileUpdate, access.ActionPartialUpdate), profile.UpdateProfile)

	return r, nil
}
