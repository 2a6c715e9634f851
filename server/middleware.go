package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minus-twelve/relay/response"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	actionKey       = "action"
	controllerKey   = "controller"
)

// requestID reuses the client's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"controller", c.GetString(controllerKey),
			"action", c.GetString(actionKey),
			"duration", time.Since(start).String(),
			"requestID", c.GetString(requestIDKey),
		)
	}
}

// recovery is the last line of defence for panics outside the dispatcher.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error("panic recovered",
			"error", fmt.Sprint(rec),
			"requestID", c.GetString(requestIDKey),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Envelope{
			Message: http.StatusText(http.StatusInternalServerError),
			Payload: map[string]interface{}{},
		})
	})
}
