package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/listen-stream/music-svc/pkg/errors"
	"github.com/listen-stream/music-svc/pkg/httputil"
)

// ValidateID 校验路径参数为合法的资源ID，否则返回 404 Invalid ID.
func ValidateID(params ...string) gin.HandlerFunc {
	if len(params) == 0 {
		params = []string{"id"}
	}
	return func(c *gin.Context) {
		for _, name := range params {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				httputil.ErrorResponse(c, apperrors.ErrInvalidID)
				return
			}
		}
		c.Next()
	}
}
