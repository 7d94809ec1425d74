package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/middleware"
	"github.com/listen-stream/music-svc/internal/service"
	"github.com/listen-stream/music-svc/pkg/httputil"
)

// UserHandler 用户处理器
type UserHandler struct {
	users UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Gender   string `json:"gender" binding:"required,oneof=male female non-binary"`
	Month    string `json:"month" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Year     string `json:"year" binding:"required"`
}

// UpdateProfileRequest 更新资料请求，未提供的字段保持不变
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,max=100"`
	Gender string `json:"gender" binding:"omitempty,oneof=male female non-binary"`
	Month  string `json:"month"`
	Date   string `json:"date"`
	Year   string `json:"year"`
}

// Register 注册
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		Month:    req.Month,
		Date:     req.Date,
		Year:     req.Year,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, user, "Account created successfully")
}

// List 用户列表（管理员）
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, users)
}

// Get 获取用户
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, user)
}

// Update 更新资料
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), domain.Profile{
		Name:   req.Name,
		Gender: req.Gender,
		Month:  req.Month,
		Date:   req.Date,
		Year:   req.Year,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, user, "Profile updated successfully")
}

// Delete 删除用户（管理员）
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.MessageResponse(c, "Successfully deleted user.")
}
