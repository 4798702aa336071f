package middleware

import (
	"net/http"
	"strconv"

	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is answered with 413 before the handler runs; chunked bodies are
// wrapped in http.MaxBytesReader and surface as *http.MaxBytesError on
// bind, which HandleValidationError also maps to 413.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c, maxBytes)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortTooLarge(c *gin.Context, limit int64) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeRequestTooLarge,
		"Request body exceeds "+strconv.FormatInt(limit, 10)+" bytes",
		c.GetString(logger.GinRequestIDKey),
	))
}
