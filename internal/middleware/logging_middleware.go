package middleware

import (
	"time"

	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/tomasen/realip"
)

// LoggingMiddleware writes one access line per request.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		log.WithContext(c.Request.Context()).
			LogAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start), realip.FromRequest(c.Request))
	}
}
