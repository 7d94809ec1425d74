package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/listen-stream/music-svc/internal/access"
	apperrors "github.com/listen-stream/music-svc/pkg/errors"
	"github.com/listen-stream/music-svc/pkg/httputil"
	"github.com/listen-stream/music-svc/pkg/jwt"
	"github.com/listen-stream/music-svc/pkg/logger"
)

const (
	// HeaderAuthToken 客户端携带令牌的请求头
	HeaderAuthToken = "x-auth-token"

	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
	ContextKeyTraceID  = "trace_id"
)

// TokenValidator 校验访问令牌
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// Authenticate 解析令牌并把调用者身份写入上下文。
// 令牌取自 x-auth-token，缺失时回退到 Authorization: Bearer。
func Authenticate(tokens TokenValidator, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httputil.ErrorResponse(c, apperrors.ErrMissingToken)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			log.WithFields(
				logger.String("request_id", GetRequestID(c)),
				logger.Error(err),
			).Warn("JWT validation failed")
			httputil.ErrorResponse(c, apperrors.ErrTokenInvalid)
			return
		}

		identity := access.Identity{
			UserID:  claims.UserID,
			Name:    claims.Name,
			IsAdmin: claims.IsAdmin,
		}
		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyUserID, identity.UserID)

		ctx := logger.WithUserID(c.Request.Context(), identity.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAdmin 仅允许管理员继续，需放在 Authenticate 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Check(IdentityFrom(c), access.Admin()); err != nil {
			httputil.ErrorResponse(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// IdentityFrom 获取当前调用者，未认证时返回零值
func IdentityFrom(c *gin.Context) access.Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if id, ok := v.(access.Identity); ok {
			return id
		}
	}
	return access.Identity{}
}

func extractToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(HeaderAuthToken)); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
