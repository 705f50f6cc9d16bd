package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies at max bytes. A declared Content-Length
// over the cap is rejected before the handler runs; chunked bodies are cut
// off while reading and surface as *http.MaxBytesError at bind time.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > max {
			abortWithError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
