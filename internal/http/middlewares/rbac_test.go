package middlewares_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type fakeAuthorizer struct {
	authorizeFn func(ep access.Endpoint, req access.Request) error
}

func (f fakeAuthorizer) Authorize(ep access.Endpoint, req access.Request) error {
	return f.authorizeFn(ep, req)
}

func TestAuthorizeMapsDenials(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "allowed", wantStatus: http.StatusOK},
		{name: "anonymous", err: fmt.Errorf("%w (x)", access.ErrNotAuthenticated), wantStatus: http.StatusUnauthorized},
		{name: "denied", err: fmt.Errorf("%w (x)", access.ErrPermissionDenied), wantStatus: http.StatusForbidden},
		{name: "misconfigured", err: access.ErrUnknownEndpoint, wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)

			var got access.Request
			authz := fakeAuthorizer{authorizeFn: func(ep access.Endpoint, req access.Request) error {
				if ep != access.EndpointCompany {
					t.Fatalf("endpoint = %s", ep)
				}
				got = req
				return tc.err
			}}

			r := gin.New()
			r.DELETE("/company/:id/", middlewares.Authorize(authz, discardLogger(), access.EndpointCompany, access.ActionDestroy), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/company/c-1/", nil))

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if got.Action != access.ActionDestroy || got.Method != http.MethodDelete {
				t.Fatalf("request = %+v", got)
			}
			if got.Caller.Authenticated {
				t.Fatalf("caller should default to anonymous")
			}
		})
	}
}
