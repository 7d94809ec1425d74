// Package httputil provides the JSON envelope shared by all music API handlers.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/listen-stream/music-svc/pkg/errors"
)

// Response is the success envelope: data and/or message.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorBody is the error envelope.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse sends 200 with data.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Data: data})
}

// MessageResponse sends 200 with a message only.
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Message: message})
}

// DataMessageResponse sends the given status with both data and message.
func DataMessageResponse(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Data: data, Message: message})
}

// CreatedResponse sends 201 with data and an optional message.
func CreatedResponse(c *gin.Context, data interface{}, message string) {
	DataMessageResponse(c, http.StatusCreated, data, message)
}

// ErrorResponse sends an error response. Anything that is not an *errors.Error
// is reported as a generic internal error.
func ErrorResponse(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternal.WithError(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// GetRequestID retrieves the request ID set by the request-id middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// CORSMiddleware sets CORS headers.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Auth-Token, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		c.Header("Access-Control-Max-Age", "3600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeadersMiddleware sets security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		c.Next()
	}
}
