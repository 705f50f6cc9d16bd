package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/tenanthub/internal/auth"
	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/security"
	"github.com/gin-gonic/gin"
)

const msgNoActiveAccount = "No active account found with the given credentials"

type CredentialsReader interface {
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

type TokensHandler struct {
	users   CredentialsReader
	jwt     *auth.Manager
	refresh auth.RefreshTokenStore
	log     *slog.Logger
}

func NewTokensHandler(users CredentialsReader, jwtManager *auth.Manager, refresh auth.RefreshTokenStore, log *slog.Logger) *TokensHandler {
	return &TokensHandler{
		users:   users,
		jwt:     jwtManager,
		refresh: refresh,
		log:     log,
	}
}

type ObtainTokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Obtain exchanges email and password for an access/refresh pair.
func (h *TokensHandler) Obtain(ctx *gin.Context) {
	var req ObtainTokenRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	found, err := h.users.GetUserByEmail(cctx, user.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "invalid_credentials", msgNoActiveAccount)
			return
		}
		RespondServiceError(ctx, h.log, "token_obtain", err)
		return
	}

	if !found.IsActive {
		RespondUnauthorized(ctx, "invalid_credentials", msgNoActiveAccount)
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", msgNoActiveAccount)
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(found.ID, found.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefresh, row, err := h.jwt.NewRefreshRecord(found.ID, found.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	if err := h.refresh.Create(cctx, row); err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "refresh_token_store_failed", "user_id", found.ID, "err", err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, TokenPair{Access: accessToken, Refresh: rawRefresh})
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *TokensHandler) Refresh(ctx *gin.Context) {
	var req RefreshTokenRequest

	if !BindJSON(ctx, &req) {
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(req.Refresh)
	if err != nil {
		RespondUnauthorized(ctx, "token_not_valid", "Token is invalid or expired")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	owner, err := h.users.GetUser(cctx, claims.UserID)
	if err != nil || !owner.IsActive {
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			RespondServiceError(ctx, h.log, "token_refresh", err)
			return
		}
		RespondUnauthorized(ctx, "token_not_valid", "Token is invalid or expired")
		return
	}

	var nextRaw string

	err = h.refresh.Rotate(cctx, claims.JTI, func(current auth.RefreshToken) (auth.RefreshToken, error) {
		if current.UserID != owner.ID {
			return auth.RefreshToken{}, auth.ErrRefreshTokenMismatch
		}

		if err := h.jwt.CheckPresented(current, req.Refresh); err != nil {
			return auth.RefreshToken{}, err
		}

		raw, next, err := h.jwt.NewRefreshRecord(owner.ID, owner.Role)
		if err != nil {
			return auth.RefreshToken{}, err
		}

		nextRaw = raw
		return next, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrRefreshTokenNotFound),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, auth.ErrRefreshTokenMismatch):
		RespondUnauthorized(ctx, "token_not_valid", "Token is invalid or expired")
		return
	case errors.Is(err, auth.ErrRefreshTokenExpired):
		RespondUnauthorized(ctx, "token_not_valid", "Token is expired")
		return
	default:
		h.log.ErrorContext(ctx.Request.Context(), "refresh_rotation_failed", "user_id", owner.ID, "err", err)
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(owner.ID, owner.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, TokenPair{Access: accessToken, Refresh: nextRaw})
}

// Verify checks signature and expiry of either token type.
func (h *TokensHandler) Verify(ctx *gin.Context) {
	var req VerifyTokenRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, err := h.jwt.Verify(req.Token); err != nil {
		RespondUnauthorized(ctx, "token_not_valid", "Token is invalid or expired")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}
