package response

import (
	"errors"
	"net/http"

	"hotel/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders err with the status of its kind. Infrastructure causes are
// attached to the gin context for the error logger and never sent to the client.
func FromError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	kind := apperror.KindOf(err)

	var appErr *apperror.Error
	if kind == apperror.KindInfrastructure || !errors.As(err, &appErr) {
		_ = c.Error(err)
		msg := "Internal server error"
		if status == http.StatusServiceUnavailable {
			msg = "Service temporarily unavailable, retry later"
		}
		Error(c, status, string(apperror.KindInfrastructure), msg)
		return
	}
	Error(c, status, string(appErr.Kind), appErr.Message)
}
