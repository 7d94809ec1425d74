package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/listen-stream/music-svc/internal/cron"
	"github.com/listen-stream/music-svc/internal/handler"
	"github.com/listen-stream/music-svc/internal/media"
	"github.com/listen-stream/music-svc/internal/middleware"
	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/internal/service"
	"github.com/listen-stream/music-svc/pkg/breaker"
	"github.com/listen-stream/music-svc/pkg/config"
	"github.com/listen-stream/music-svc/pkg/consul"
	"github.com/listen-stream/music-svc/pkg/crypto"
	"github.com/listen-stream/music-svc/pkg/db"
	"github.com/listen-stream/music-svc/pkg/jwt"
	"github.com/listen-stream/music-svc/pkg/limiter"
	"github.com/listen-stream/music-svc/pkg/logger"
	redispkg "github.com/listen-stream/music-svc/pkg/redis"
	"github.com/listen-stream/music-svc/pkg/telemetry"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply pending migrations before serving"},
		},
		Action: runServe,
	}
}

func newLogger(cfg *config.LogConfig) logger.Logger {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(cfg.Level)
	lc.Caller = cfg.Caller
	log := logger.New(lc)
	logger.SetGlobalLogger(log)
	return log
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	infra := &cfg.Infrastructure
	log := newLogger(&infra.Log)
	log.Info("starting "+serviceName, logger.String("version", version))

	provider, shutdownTelemetry, err := telemetry.Init(ctx, serviceName, &infra.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", logger.Error(err))
		}
	}()

	if cmd.Bool("migrate") {
		if err := withMigrator(ctx, cmd, func(m *db.Migrator) error { return m.Up() }); err != nil {
			return err
		}
		log.Info("schema migrations applied")
	}

	pool, err := repository.NewPool(ctx, &infra.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connected", logger.String("host", infra.Postgres.Host))

	deps := map[string]handler.Pinger{"postgres": repository.NewHealthChecker(pool), "redis": nil}

	var throttle service.LoginThrottle
	if infra.Redis.Enabled {
		rdb, err := redispkg.NewClient(ctx, redisOptions(&infra.Redis))
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps["redis"] = rdb
		throttle = limiter.NewLoginLimiter(rdb, cfg.Business.Security.LoginMaxAttempts, cfg.Business.Security.LoginWindow)
	} else {
		log.Warn("redis disabled, sign-in throttling is off")
	}

	tokens, err := jwt.NewManager(&jwt.Config{
		Secret:      cfg.Business.Common.JWTSecret,
		Issuer:      cfg.Business.Common.JWTIssuer,
		TokenExpiry: cfg.Business.Common.JWTExpiry,
	})
	if err != nil {
		return err
	}

	if consulCfg := &infra.Consul; consulCfg.Address != "" && consulCfg.WatchInterval > 0 {
		loader, err := config.NewConsulLoader(consulCfg)
		if err != nil {
			return err
		}
		watcher := config.NewWatcher(loader, cfg.Business, consulCfg.WatchInterval, log)
		watcher.OnChange(func(b *config.BusinessConfig) error {
			if ttl := b.Common.JWTExpiry; ttl != tokens.TTL() {
				tokens.SetTTL(ttl)
				log.Info("token expiry updated", logger.Duration("ttl", tokens.TTL()))
			}
			return nil
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	var uploader media.Uploader
	if cfg.Business.Media.Configured() {
		cld, err := media.NewUploader(&cfg.Business.Media)
		if err != nil {
			return err
		}
		uploader = media.Guarded(cld, breaker.New(breaker.Config{
			Name:        "media",
			MaxFailures: cfg.Business.Media.BreakerMaxFailures,
			Cooldown:    cfg.Business.Media.BreakerCooldown,
		}))
	} else {
		log.Warn("media storage not configured, song uploads are disabled")
	}

	if err := os.MkdirAll(infra.Server.UploadDir, 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	userRepo := repository.NewUserRepository(pool)
	songRepo := repository.NewSongRepository(pool)
	playlistRepo := repository.NewPlaylistRepository(pool)
	hasher := crypto.NewPasswordHasher()

	requests, err := provider.NewHTTPRequestCounter()
	if err != nil {
		return err
	}
	durations, err := provider.NewHTTPDurationHistogram()
	if err != nil {
		return err
	}
	uploads, err := provider.NewUploadCounter()
	if err != nil {
		return err
	}

	handlers := &handler.Handlers{
		Users: handler.NewUserHandler(service.NewUserService(userRepo, hasher, log)),
		Auth:  handler.NewAuthHandler(service.NewAuthService(userRepo, hasher, tokens, throttle, log)),
		Songs: handler.NewSongHandler(
			service.NewSongService(songRepo, userRepo, uploader, cfg.Business.Media.Folder, log),
			infra.Server.UploadDir, infra.Server.MaxUploadSize, uploads,
		),
		Playlists: handler.NewPlaylistHandler(service.NewPlaylistService(playlistRepo, songRepo, userRepo, log)),
		Search:    handler.NewSearchHandler(service.NewSearchService(songRepo, playlistRepo)),
		Health:    handler.NewHealthHandler(deps),
	}

	opts := handler.RouterOptions{
		ServiceName:        serviceName,
		Tokens:             tokens,
		Log:                log,
		Tracer:             provider.Tracer(),
		Requests:           requests,
		Durations:          durations,
		Metrics:            provider.Handler(),
		MaxMultipartMemory: infra.Server.MaxUploadSize,
	}
	if sec := cfg.Business.Security; sec.RateLimitEnabled {
		opts.RateLimiter = middleware.NewRateLimiter(sec.IPRatePerSecond, sec.IPBurst)
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", infra.Server.HTTPPort),
		Handler:      handler.NewRouter(handlers, opts),
		ReadTimeout:  infra.Server.ReadTimeout,
		WriteTimeout: infra.Server.WriteTimeout,
		IdleTimeout:  infra.Server.IdleTimeout,
	}

	sweeper := service.NewUploadCleanupService(infra.Server.UploadDir, infra.Server.UploadTTL, log)
	cronManager := cron.NewCronManager(sweeper, infra.Server.UploadSweepSpec, log)
	if err := cronManager.Start(); err != nil {
		return err
	}
	defer cronManager.Stop()

	// clear uploads left behind by a previous run
	if stats, err := cronManager.RunSweepNow(ctx); err != nil {
		log.Warn("startup upload sweep failed", logger.Error(err))
	} else if stats.Removed > 0 {
		log.Info("removed stale uploads", logger.Int("removed", stats.Removed))
	}

	if consulCfg := &infra.Consul; consulCfg.Address != "" && consulCfg.Register {
		registry, err := consul.NewRegistry(consulCfg, log)
		if err != nil {
			return err
		}
		if err := registry.Register(consul.Registration{
			ServiceName: serviceName,
			Host:        consulCfg.ServiceAddress,
			Port:        infra.Server.HTTPPort,
			Tags:        consulCfg.ServiceTags,
		}); err != nil {
			return err
		}
		defer func() {
			if err := registry.Deregister(); err != nil {
				log.Warn("consul deregistration failed", logger.Error(err))
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down " + serviceName)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(infra.Server.ShutdownTimeout))
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info(serviceName + " stopped")
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

func redisOptions(cfg *config.RedisConfig) redispkg.Options {
	return redispkg.Options{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
