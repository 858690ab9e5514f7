package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"cvprofile-backend/internal/shared/server/respond"
	"cvprofile-backend/internal/shared/telemetry"
)

// Recovery recovers from handler panics and returns a standardized error
// response. Analysis-side panics inside the retry controller are contained
// there and never reach this middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				}
				if userID := UserIDFromContext(c); userID != "" {
					fields["user_id"] = userID
				}
				telemetry.Error("panic", fields)
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
