package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/handler"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

// ErrorHandler logs errors attached to the context and renders the last one
// when the handler did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(handler.ContextRequestID)
		for _, e := range c.Errors {
			event := log.Debug()
			if appErr, ok := apperrors.As(e.Err); !ok || appErr.HTTPStatus() >= 500 {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}

		if !c.Writer.Written() {
			handler.Error(c, c.Errors.Last().Err)
		}
	}
}
