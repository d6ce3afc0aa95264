package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/dto"
)

// DefaultBodyLimit bounds availability and booking request bodies
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit rejects declared oversize bodies and caps streamed ones.
// Handlers see *http.MaxBytesError from binding when the cap is hit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString("request_id"),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
