package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listen-stream/music-svc/pkg/httputil"
)

// AuthHandler 登录处理器
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler 创建登录处理器
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录并返回令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, token, "Signing in please wait...")
}
