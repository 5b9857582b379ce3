package api

import (
	"net/http"

	"restaurant-pos/internal/service"
	"restaurant-pos/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service error kind to an HTTP status
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Unclassified errors are logged and
// reported generically.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	if kind == service.KindInternal {
		util.WithTrace(c.Request.Context(), util.GetLogger()).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  service.CodeOf(err),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}
