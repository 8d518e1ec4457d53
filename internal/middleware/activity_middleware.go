package middleware

import (
	"net/http"
	"time"

	"assetadmin/internal/models"
	"assetadmin/internal/services"
	"assetadmin/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/tomasen/realip"
)

// ActivityMiddleware records every authenticated write. It must run after
// AuthRequired so the caller is known.
func ActivityMiddleware(activity services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		userID, ok := CurrentUserID(c)
		if !ok {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		entry := &models.ActivityLog{
			RefID:        models.ObjectID(userID),
			Route:        c.Request.URL.Path,
			Method:       c.Request.Method,
			ActivityName: services.RouteName(route),
			HTTPStatus:   c.Writer.Status(),
			IPAddress:    realip.FromRequest(c.Request),
			UserAgent:    c.Request.UserAgent(),
			RequestID:    c.GetString(utils.ContextRequestID),
			DurationMS:   time.Since(start).Milliseconds(),
		}
		entry.AddedBy = models.ObjectID(userID)
		activity.Record(entry)
	}
}
