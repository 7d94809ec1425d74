package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/middleware"
	"github.com/listen-stream/music-svc/pkg/httputil"
)

// PlaylistHandler 歌单处理器
type PlaylistHandler struct {
	playlists PlaylistService
}

// NewPlaylistHandler 创建歌单处理器
func NewPlaylistHandler(playlists PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists}
}

// PlaylistRequest 歌单元数据请求
type PlaylistRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Desc string `json:"desc"`
	Img  string `json:"img"`
}

// PlaylistSongRequest 歌单增删歌曲请求
type PlaylistSongRequest struct {
	PlaylistID string `json:"playlistId" binding:"required,uuid"`
	SongID     string `json:"songId" binding:"required,uuid"`
}

func (r PlaylistRequest) input() domain.PlaylistInput {
	return domain.PlaylistInput{Name: r.Name, Desc: r.Desc, Img: r.Img}
}

// Create 创建歌单
func (h *PlaylistHandler) Create(c *gin.Context) {
	var req PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	playlist, err := h.playlists.Create(c.Request.Context(), middleware.IdentityFrom(c), req.input())
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.CreatedResponse(c, playlist, "")
}

// List 全部歌单
func (h *PlaylistHandler) List(c *gin.Context) {
	playlists, err := h.playlists.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, playlists)
}

// Favourites 当前用户的歌单
func (h *PlaylistHandler) Favourites(c *gin.Context) {
	playlists, err := h.playlists.Favourites(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, playlists)
}

// Get 歌单详情及歌曲
func (h *PlaylistHandler) Get(c *gin.Context) {
	detail, err := h.playlists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, detail)
}

// Edit 修改歌单（所有者）
func (h *PlaylistHandler) Edit(c *gin.Context) {
	var req PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	playlist, err := h.playlists.Edit(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req.input())
	if err != nil {
		handleForbiddenAs(c, err, "User don't have access to edit!")
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, playlist, "Updated successfully")
}

// AddSong 添加歌曲（所有者）
func (h *PlaylistHandler) AddSong(c *gin.Context) {
	var req PlaylistSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	playlist, err := h.playlists.AddSong(c.Request.Context(), middleware.IdentityFrom(c), req.PlaylistID, req.SongID)
	if err != nil {
		handleForbiddenAs(c, err, "User don't have access to add!")
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, playlist, "Added to playlist")
}

// RemoveSong 移除歌曲（所有者）
func (h *PlaylistHandler) RemoveSong(c *gin.Context) {
	var req PlaylistSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	playlist, err := h.playlists.RemoveSong(c.Request.Context(), middleware.IdentityFrom(c), req.PlaylistID, req.SongID)
	if err != nil {
		handleForbiddenAs(c, err, "User don't have access to Remove!")
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, playlist, "Removed from playlist")
}

// Delete 删除歌单（所有者）
func (h *PlaylistHandler) Delete(c *gin.Context) {
	if err := h.playlists.Delete(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		handleForbiddenAs(c, err, "User don't have access to delete!")
		return
	}
	httputil.MessageResponse(c, "Removed from library")
}
