package webhook

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"consumo_wpp_backend/platform/httpkit"
)

// TokenAuthMiddleware rejects webhook calls without the shared token
// configured at the provider. An empty configured token disables the
// check for local development.
func TokenAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		provided := c.GetHeader("Client-Token")
		if provided == "" {
			provided = c.Query("token")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			httpkit.Error(c, http.StatusUnauthorized, "invalid webhook token")
			c.Abort()
			return
		}

		c.Next()
	}
}
