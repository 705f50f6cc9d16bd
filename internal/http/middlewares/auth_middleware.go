package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/actorctx"
	"github.com/geocoder89/tenanthub/internal/auth"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetUser(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLoader
	log   *slog.Logger
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, log: log}
}

// Authenticate resolves the caller. Requests without an Authorization
// header continue as anonymous; a header that does not resolve to an
// active user is rejected with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			setCaller(c, access.Anonymous())
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "token_not_valid", "Invalid or expired access token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := m.users.GetUser(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, "user_not_found", "User not found")
				return
			}

			m.log.ErrorContext(c.Request.Context(), "load_caller_failed", "user_id", claims.UserID, "err", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not load user")
			return
		}

		if !u.IsActive {
			abortWithError(c, http.StatusUnauthorized, "user_inactive", "User is inactive")
			return
		}

		setCaller(c, access.FromUser(u))
		c.Next()
	}
}

func setCaller(c *gin.Context, caller access.Caller) {
	c.Set(ctxCallerKey, caller)
	c.Request = c.Request.WithContext(actorctx.WithCaller(c.Request.Context(), caller))
}

func callerFromGin(c *gin.Context) (access.Caller, bool) {
	v, ok := c.Get(ctxCallerKey)
	if !ok {
		return access.Caller{}, false
	}
	caller, ok := v.(access.Caller)
	return caller, ok
}

// CallerFromContext returns the resolved caller, anonymous when the
// request was never authenticated.
func CallerFromContext(c *gin.Context) access.Caller {
	caller, ok := callerFromGin(c)
	if !ok {
		return access.Anonymous()
	}
	return caller
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	caller := CallerFromContext(c)
	return caller.UserID, caller.Authenticated && caller.UserID != ""
}
