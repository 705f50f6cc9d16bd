package handlers

import (
	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ObjectAuthorizer interface {
	AuthorizeObject(ep access.Endpoint, req access.Request, obj access.Object) error
}

func accessRequest(ctx *gin.Context, action access.Action) access.Request {
	return access.Request{
		Caller: middlewares.CallerFromContext(ctx),
		Method: ctx.Request.Method,
		Action: action,
	}
}

// memberAction is the action for a PUT or PATCH on a member route.
func memberAction(ctx *gin.Context) (access.Action, bool) {
	action, _ := access.ActionFor(ctx.Request.Method, true)
	return action, action == access.ActionPartialUpdate
}
