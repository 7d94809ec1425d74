package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/listen-stream/music-svc/pkg/errors"
	"github.com/listen-stream/music-svc/pkg/httputil"
	"github.com/listen-stream/music-svc/pkg/logger"
)

const (
	// HeaderRequestID 请求ID头，客户端传入时沿用
	HeaderRequestID = "X-Request-ID"

	ContextKeyRequestID = "request_id"
)

// RequestID 为每个请求分配ID，并写入响应头与请求 ctx
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID 返回当前请求ID，未经过 RequestID 时为空
func GetRequestID(c *gin.Context) string {
	id, _ := c.Value(ContextKeyRequestID).(string)
	return id
}

// requestFields 访问日志与 panic 日志共用的请求字段
func requestFields(c *gin.Context) []logger.Field {
	fields := []logger.Field{
		logger.String("request_id", GetRequestID(c)),
		logger.String("method", c.Request.Method),
		logger.String("path", c.Request.URL.Path),
		logger.String("ip", c.ClientIP()),
	}
	if uid := c.GetString(ContextKeyUserID); uid != "" {
		fields = append(fields, logger.String("user_id", uid))
	}
	if tid := c.GetString(ContextKeyTraceID); tid != "" {
		fields = append(fields, logger.String("trace_id", tid))
	}
	return fields
}

// Logging 请求结束后输出一条访问日志，4xx 记 warn，5xx 记 error
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append(requestFields(c),
			logger.String("query", c.Request.URL.RawQuery),
			logger.Int("status", status),
			logger.Int("bytes", c.Writer.Size()),
			logger.Int64("latency_ms", time.Since(start).Milliseconds()),
		)

		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				fields = append(fields, logger.String("error", c.Errors.String()))
			}
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}

// Recovery 把 handler 中的 panic 转成 500 响应
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error("panic in handler", append(requestFields(c),
				logger.String("panic", fmt.Sprint(r)),
				logger.String("stack", string(debug.Stack())),
			)...)
			httputil.ErrorResponse(c, apperrors.ErrInternal.WithError(fmt.Errorf("panic: %v", r)))
		}()
		c.Next()
	}
}
