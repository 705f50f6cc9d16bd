package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/gin-gonic/gin"
)

type Authorizer interface {
	Authorize(ep access.Endpoint, req access.Request) error
}

// Authorize applies the permission gate of the endpoint/action before the
// handler runs. Object gates are the handler's job.
func Authorize(authz Authorizer, log *slog.Logger, ep access.Endpoint, action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := access.Request{
			Caller: CallerFromContext(c),
			Method: c.Request.Method,
			Action: action,
		}

		err := authz.Authorize(ep, req)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, access.ErrNotAuthenticated):
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided.")
		case errors.Is(err, access.ErrPermissionDenied):
			abortWithError(c, http.StatusForbidden, "forbidden", "You do not have permission to perform this action.")
		default:
			log.ErrorContext(c.Request.Context(), "authorization_failed", "endpoint", ep, "action", action, "err", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Authorization failed")
		}
	}
}
