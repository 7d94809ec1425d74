package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/listen-stream/music-svc/internal/middleware"
	"github.com/listen-stream/music-svc/pkg/httputil"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// Handlers 全部处理器
type Handlers struct {
	Users     *UserHandler
	Auth      *AuthHandler
	Songs     *SongHandler
	Playlists *PlaylistHandler
	Search    *SearchHandler
	Health    *HealthHandler
}

// RouterOptions 路由依赖，可选项为 nil 时对应中间件不启用
type RouterOptions struct {
	ServiceName string
	Tokens      middleware.TokenValidator
	Log         logger.Logger

	RateLimiter *middleware.RateLimiter
	Tracer      trace.Tracer
	Requests    metric.Int64Counter
	Durations   metric.Float64Histogram
	Metrics     http.Handler

	MaxMultipartMemory int64
}

func init() {
	// 校验错误使用 JSON 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// NewRouter 组装路由
func NewRouter(h *Handlers, opts RouterOptions) *gin.Engine {
	router := gin.New()
	if opts.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	router.Use(middleware.Recovery(opts.Log))
	router.Use(middleware.RequestID())
	if opts.Tracer != nil {
		router.Use(middleware.Tracing(opts.Tracer, opts.ServiceName))
	}
	if opts.Requests != nil && opts.Durations != nil {
		router.Use(middleware.Metrics(opts.Requests, opts.Durations))
	}
	router.Use(middleware.Logging(opts.Log))
	router.Use(httputil.CORSMiddleware(), httputil.SecurityHeadersMiddleware())
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Limit())
	}

	if h.Health != nil {
		router.GET("/health", h.Health.Health)
	}
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	authenticate := middleware.Authenticate(opts.Tokens, opts.Log)
	admin := middleware.RequireAdmin()
	validID := middleware.ValidateID()

	api := router.Group("/api")

	api.POST("/login", h.Auth.Login)

	users := api.Group("/users")
	{
		users.POST("", h.Users.Register)
		users.GET("", authenticate, admin, h.Users.List)
		users.GET("/:id", validID, authenticate, h.Users.Get)
		users.PUT("/:id", validID, authenticate, h.Users.Update)
		users.DELETE("/:id", validID, authenticate, admin, h.Users.Delete)
	}

	songs := api.Group("/songs")
	{
		songs.GET("", h.Songs.List)
		songs.POST("", authenticate, admin, h.Songs.Create)
		songs.POST("/upload", authenticate, admin, h.Songs.Upload)
		songs.GET("/like", authenticate, h.Songs.LikedSongs)
		songs.PUT("/like/:id", validID, authenticate, h.Songs.ToggleLike)
		songs.GET("/:id", validID, h.Songs.Get)
		songs.PUT("/:id", validID, authenticate, admin, h.Songs.Update)
		songs.DELETE("/:id", validID, authenticate, admin, h.Songs.Delete)
	}

	playlists := api.Group("/playlists", authenticate)
	{
		playlists.POST("", h.Playlists.Create)
		playlists.GET("", h.Playlists.List)
		playlists.GET("/favourite", h.Playlists.Favourites)
		playlists.GET("/:id", validID, h.Playlists.Get)
		playlists.PUT("/edit/:id", validID, h.Playlists.Edit)
		playlists.PUT("/add-song", h.Playlists.AddSong)
		playlists.PUT("/remove-song", h.Playlists.RemoveSong)
		playlists.DELETE("/:id", validID, h.Playlists.Delete)
	}

	api.GET("/search", authenticate, h.Search.Search)

	return router
}
