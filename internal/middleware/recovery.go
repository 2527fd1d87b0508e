package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns a handler panic into a 500 in the API error envelope.
// The route template is logged rather than the raw path, so patient ids
// do not end up in panic logs.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(recovered)
			}

			requestID := c.GetString(ContextRequestID)
			log.Error().
				Interface("panic", recovered).
				Bytes("stack", debug.Stack()).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("user_id", c.GetString(ContextUserID)).
				Str("request_id", requestID).
				Msg("handler panicked")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Status:  "error",
				Code:    http.StatusInternalServerError,
				Message: "internal server error",
				TraceID: requestID,
			})
		}()
		c.Next()
	}
}
