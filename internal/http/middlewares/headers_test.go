package middlewares_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func TestMaxBodyBytesRejectsDeclaredOversize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(8))
	r.POST("/echo/", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, string(b))
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "within cap", body: `{"a":1}`, want: http.StatusOK},
		{name: "over cap", body: `{"username":"x"}`, want: http.StatusRequestEntityTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.SecurityHeaders())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/token/", ok)
	r.GET("/users/", ok)
	r.GET("/swagger", ok)

	get := func(method, path string) http.Header {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w.Header()
	}

	h := get(http.MethodPost, "/token/")
	if h.Get("Cache-Control") != "no-store" {
		t.Fatalf("token Cache-Control = %q", h.Get("Cache-Control"))
	}
	if h.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff")
	}

	h = get(http.MethodGet, "/users/")
	if h.Get("Cache-Control") != "" {
		t.Fatalf("users Cache-Control = %q, want none", h.Get("Cache-Control"))
	}
	if !strings.Contains(h.Get("Content-Security-Policy"), "default-src 'none'") {
		t.Fatalf("api CSP = %q", h.Get("Content-Security-Policy"))
	}

	h = get(http.MethodGet, "/swagger")
	if !strings.Contains(h.Get("Content-Security-Policy"), "unpkg.com") {
		t.Fatalf("docs CSP = %q", h.Get("Content-Security-Policy"))
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"https://app.example.com/"}))
	r.GET("/company/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/company/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/company/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin: status %d, allow %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}
