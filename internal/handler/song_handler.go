package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/middleware"
	"github.com/listen-stream/music-svc/pkg/httputil"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// SongHandler 歌曲处理器
type SongHandler struct {
	songs         SongService
	uploadDir     string
	maxUploadSize int64
	uploads       metric.Int64Counter // 可为 nil
}

// NewSongHandler 创建歌曲处理器
func NewSongHandler(songs SongService, uploadDir string, maxUploadSize int64, uploads metric.Int64Counter) *SongHandler {
	return &SongHandler{
		songs:         songs,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
		uploads:       uploads,
	}
}

// SongRequest 歌曲字段，JSON 与 multipart 表单共用
type SongRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Artist   string `json:"artist" form:"artist"`
	Song     string `json:"song" form:"song"`
	Img      string `json:"img" form:"img"`
	Duration int    `json:"duration" form:"duration" binding:"min=0"`
	SongFile string `json:"songFile" form:"-"`
}

func (r SongRequest) input() domain.SongInput {
	return domain.SongInput{
		Name:     r.Name,
		Artist:   r.Artist,
		Song:     r.Song,
		Img:      r.Img,
		Duration: r.Duration,
		SongFile: r.SongFile,
	}
}

// UpdateSongRequest 更新歌曲，只修改请求中出现的字段
type UpdateSongRequest struct {
	Name     *string `json:"name"`
	Artist   *string `json:"artist"`
	Song     *string `json:"song"`
	Img      *string `json:"img"`
	Duration *int    `json:"duration" binding:"omitempty,min=0"`
	SongFile *string `json:"songFile"`
}

func (r UpdateSongRequest) patch() domain.SongPatch {
	return domain.SongPatch{
		Name:     r.Name,
		Artist:   r.Artist,
		Song:     r.Song,
		Img:      r.Img,
		Duration: r.Duration,
		SongFile: r.SongFile,
	}
}

// Create 创建歌曲（管理员）
func (h *SongHandler) Create(c *gin.Context) {
	var req SongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	song, err := h.songs.Create(c.Request.Context(), middleware.IdentityFrom(c), req.input())
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.CreatedResponse(c, song, "Song created successfully")
}

// Upload 上传音频文件并创建歌曲（管理员）
func (h *SongHandler) Upload(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	var req SongRequest
	if err := c.ShouldBind(&req); err != nil {
		handleBindError(c, err)
		return
	}

	file, err := c.FormFile("songFile")
	if err != nil {
		handleError(c, domain.ErrMissingFile)
		return
	}

	dst := filepath.Join(h.uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		handleError(c, fmt.Errorf("spool upload: %w", err))
		return
	}
	defer func() {
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			logger.WithContext(c.Request.Context()).Warn("failed to remove spooled upload",
				logger.String("path", dst),
				logger.Error(err),
			)
		}
	}()

	song, err := h.songs.Upload(c.Request.Context(), middleware.IdentityFrom(c), req.input(), dst)
	h.countUpload(c, err == nil)
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.CreatedResponse(c, song, "Song uploaded successfully")
}

func (h *SongHandler) countUpload(c *gin.Context, ok bool) {
	if h.uploads == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	h.uploads.Add(c.Request.Context(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// List 歌曲列表
func (h *SongHandler) List(c *gin.Context) {
	songs, err := h.songs.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, songs)
}

// Get 获取歌曲
func (h *SongHandler) Get(c *gin.Context) {
	song, err := h.songs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, song)
}

// Update 更新歌曲（管理员）
func (h *SongHandler) Update(c *gin.Context) {
	var req UpdateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	song, err := h.songs.Update(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req.patch())
	if err != nil {
		handleError(c, err)
		return
	}

	httputil.DataMessageResponse(c, http.StatusOK, song, "Updated song successfully")
}

// Delete 删除歌曲（管理员）
func (h *SongHandler) Delete(c *gin.Context) {
	if err := h.songs.Delete(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.MessageResponse(c, "Song deleted sucessfully")
}

// ToggleLike 喜欢/取消喜欢
func (h *SongHandler) ToggleLike(c *gin.Context) {
	liked, err := h.songs.ToggleLike(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	if liked {
		httputil.MessageResponse(c, "Added to your liked songs")
		return
	}
	httputil.MessageResponse(c, "Removed from your liked songs")
}

// LikedSongs 当前用户喜欢的歌曲
func (h *SongHandler) LikedSongs(c *gin.Context) {
	songs, err := h.songs.LikedSongs(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, songs)
}
