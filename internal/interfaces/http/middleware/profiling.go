package middleware

import (
	"context"
	"strings"

	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling labels CPU samples taken while a route runs, so a slow BOL
// bundle can be told apart from a WMS push in the flame graph. Routes
// outside /api are left unlabeled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if !strings.HasPrefix(route, "/api/") {
			c.Next()
			return
		}
		telemetry.WithOperationLabels(c.Request.Context(), operationFromRoute(route), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, "route", route, "method", c.Request.Method)
	}
}

// operationFromRoute derives a label from the route pattern:
// "/api/v1/shipments/bols" -> "shipments.bols".
func operationFromRoute(route string) string {
	var parts []string
	for _, seg := range strings.Split(route, "/") {
		if seg == "" || seg == "api" || isVersionSegment(seg) || strings.HasPrefix(seg, ":") {
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, ".")
}

// isVersionSegment checks if a path segment is an API version (v1, v2, etc.)
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
