package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/services"
)

// ErrorHandler renders the last error attached with c.Error as the standard
// failure envelope. Unclassified errors become a 500 whose cause is only
// exposed when dev is set.
func ErrorHandler(logger zerolog.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var se *services.Error
		if !errors.As(err, &se) {
			se = services.Internal("Internal Server Error", err)
		}

		body := gin.H{"success": false, "error": se.Title, "message": se.Message}
		if se.Kind == services.KindInternal {
			logger.Error().
				Err(err).
				Str("request_id", RequestID(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("request failed")
			if dev && se.Err != nil {
				body["details"] = se.Err.Error()
			}
		}
		c.JSON(se.Kind.Status(), body)
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery(logger zerolog.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			logger.Error().
				Str("request_id", RequestID(c)).
				Interface("panic", r).
				Bytes("stack", stack).
				Msg("panic recovered")

			body := gin.H{"success": false, "error": "Internal Server Error", "message": "Something went wrong"}
			if dev {
				body["stack"] = string(stack)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
