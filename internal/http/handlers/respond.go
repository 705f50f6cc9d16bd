package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/accounts"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/geocoder89/tenanthub/internal/validation"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondValidation(ctx *gin.Context, verr *validation.Error) {
	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": verr.Fields})
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondServiceError maps workflow and authorization errors onto the
// envelope. Anything unrecognised is logged and reported as a 500.
func RespondServiceError(ctx *gin.Context, log *slog.Logger, op string, err error) {
	var verr *validation.Error

	switch {
	case errors.As(err, &verr):
		RespondValidation(ctx, verr)
	case errors.Is(err, access.ErrNotAuthenticated):
		RespondUnauthorized(ctx, "unauthorized", "Authentication credentials were not provided.")
	case errors.Is(err, access.ErrPermissionDenied):
		RespondForbidden(ctx, "You do not have permission to perform this action.")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, company.ErrOfficeNotFound):
		RespondNotFound(ctx, "Office not found")
	case errors.Is(err, company.ErrNotFound):
		RespondNotFound(ctx, "Company not found")
	case errors.Is(err, accounts.ErrConflict):
		RespondConflict(ctx, "conflict", conflictMessage(err))
	default:
		log.ErrorContext(ctx.Request.Context(), op+"_failed",
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
		RespondInternal(ctx, "Could not complete request")
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		return "A user with that username already exists."
	case errors.Is(err, user.ErrEmailTaken):
		return "A user with that email already exists."
	case errors.Is(err, company.ErrNameTaken):
		return "company with this name already exists."
	case errors.Is(err, company.ErrOfficeNameTaken):
		return "office with this name already exists."
	default:
		return "Conflicting record"
	}
}
