package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/campusloop/campusloop-backend/internal/config"
	"github.com/campusloop/campusloop-backend/internal/database"
	"github.com/campusloop/campusloop-backend/internal/handler"
	"github.com/campusloop/campusloop-backend/internal/middleware"
	"github.com/campusloop/campusloop-backend/internal/migration"
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/internal/routes"
	"github.com/campusloop/campusloop-backend/internal/service"
	"github.com/campusloop/campusloop-backend/internal/ws"
	pkgcache "github.com/campusloop/campusloop-backend/pkg/cache"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	"github.com/campusloop/campusloop-backend/pkg/jwt"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	pkgredis "github.com/campusloop/campusloop-backend/pkg/redis"
	pkgstorage "github.com/campusloop/campusloop-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// DB 연결
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to %s", cfg.Database.Driver)
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis 연결 (선택)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(context.Background(), pkgredis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, 3*time.Second)
		if err != nil {
			if cfg.KV.Driver == "redis" {
				log.Fatalf("Redis is required by kv driver: %v", err)
			}
			pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			pkglogger.Info("Connected to Redis")
		}
	}

	cacheService := pkgcache.NewService(redisClient)

	// Key-value store (per-user device state)
	kv := newKVStore(cfg, db, redisClient)
	devices := service.NewDeviceProvider(kv)

	// 이미지 저장소
	uploader, localDir := newUploader(cfg)
	keyPrefix := ""
	if localDir == "" {
		// S3 는 연/월 디렉터리로 분산
		keyPrefix = "images"
	}
	mediaService := service.NewMediaService(uploader, keyPrefix, cfg.Storage.MaxUploadBytes)

	// WebSocket Hub
	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()

	// Chat sessions
	sessions := service.NewSessionRegistry(devices, service.RegistryOptions{
		AutoReplyDelay: cfg.Chat.AutoReplyDelay,
		IdleTimeout:    cfg.Chat.SessionIdleTimeout,
		Notifier:       wsHub,
	})
	bgCtx, stopBackground := context.WithCancel(context.Background())
	go sessions.Run(bgCtx)
	go reportDBConnections(bgCtx, db)

	// JWT Manager
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// i18n Bundle
	i18nBundle := i18n.NewDefaultBundle()
	if _, err := os.Stat("i18n"); err == nil {
		if err := i18nBundle.LoadDir("i18n"); err != nil {
			log.Printf("warning: i18n LoadDir failed: %v", err)
		}
	}

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	// Gin 라우터 생성
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))

	// Middleware
	router.Use(middleware.I18n())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Repositories / Services / Handlers
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)

	authService := service.NewAuthService(userRepo, jwtManager)
	productService := service.NewProductService(productRepo, cacheService)

	routes.Setup(router, routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(productService, mediaService),
		Listing: handler.NewListingHandler(devices, i18nBundle),
		Chat:    handler.NewChatHandler(devices, sessions),
		WS:      handler.NewWSHandler(wsHub, sessions, cfg.CORS.AllowOrigins),
		Health:  handler.NewHealthHandler(db, redisClient),
	}, jwtManager, redisClient, i18nBundle, routes.Options{
		UploadDir:       localDir,
		RateLimitPerMin: cfg.Server.RateLimitPerMin,
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	// 서버 시작
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("Server forced to shutdown: %v", err)
	}

	stopBackground()
	sessions.CloseAll()
	wsHub.Stop()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	pkglogger.Info("Server exited")
}

func newKVStore(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) kvstore.Store {
	switch cfg.KV.Driver {
	case "redis":
		return kvstore.NewRedisStore(redisClient, cfg.KV.Prefix)
	case "memory":
		pkglogger.Warn("kv driver memory: device state is lost on restart")
		return kvstore.NewMemoryStore()
	default:
		return kvstore.NewGormStore(db)
	}
}

// newUploader returns the image uploader and, for local storage, the directory served under /uploads
func newUploader(cfg *config.Config) (pkgstorage.Uploader, string) {
	if cfg.Storage.S3Enabled {
		s3Client, err := pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = s3Client.Ping(ctx)
			cancel()
		}
		if err == nil {
			pkglogger.Info("Connected to S3 bucket %s", cfg.Storage.Bucket)
			return s3Client, ""
		}
		pkglogger.Info("Warning: S3 storage init failed: %v (falling back to local disk)", err)
	}

	local, err := pkgstorage.NewLocalStore(cfg.Storage.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}
	return local, local.Dir()
}

func corsConfig(allowOrigins string) cors.Config {
	c := cors.Config{
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "Accept-Language"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}

	var origins []string
	for _, o := range strings.Split(allowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials 와 "*" 는 함께 쓸 수 없음
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}

func reportDBConnections(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			middleware.SetDBConnectionsOpen(database.OpenConnections(db))
		}
	}
}
