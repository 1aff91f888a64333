package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS restricts cross-origin calls to allowedOrigins, except on paths with one
// of openPrefixes, which partners call from their own domains.
func CORS(allowedOrigins []string, openPrefixes ...string) gin.HandlerFunc {
	restricted := cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
	open := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	})

	return func(c *gin.Context) {
		for _, prefix := range openPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				open(c)
				return
			}
		}
		restricted(c)
	}
}
