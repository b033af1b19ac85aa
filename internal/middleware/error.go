package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

// ErrorHandler logs errors attached with c.Error. Internal errors are logged
// with their cause since the response hides it. A handler that attached an
// error without responding gets the standard error envelope.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last().Err
		if errors.KindOf(last) == errors.ErrInternal {
			log.Error(last, "Request error",
				"request_id", c.GetString(ContextRequestID),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, last)
		}
	}
}
