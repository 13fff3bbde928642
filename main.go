package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/contenthub/contenthub/handlers"
	"github.com/contenthub/contenthub/internal/cache"
	"github.com/contenthub/contenthub/internal/config"
	"github.com/contenthub/contenthub/internal/content"
	"github.com/contenthub/contenthub/internal/database"
	"github.com/contenthub/contenthub/internal/storage"
	"github.com/contenthub/contenthub/internal/users"
	"github.com/contenthub/contenthub/pkg/logger"
	"github.com/contenthub/contenthub/pkg/metrics"
	"github.com/contenthub/contenthub/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: db=%s redis=%v cache_ttl=%s", cfg.Database.Path, cfg.Redis.Host != "", cfg.Cache.TTL)

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so both the cache and the rate-limiter can
	// use it. Redis is optional: without it reads go straight to SQLite.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err == nil {
			redisClient = client
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v — caching disabled", cfg.Redis.Host, cfg.Redis.Port, err)
		}
	}
	store := cache.New(redisClient, "")

	// Optional global rate limiter (per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// SQLite is the source of truth; without it there is no service.
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer func() { _ = db.Close() }()

	userSvc := users.NewService(users.NewSQLRepository(db))
	contentSvc := content.NewService(content.NewSQLRepository(db), userSvc, store, cfg.Cache.TTL)

	// Optional MinIO media storage for content image uploads
	var media *storage.MediaStorage
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		media, err = storage.NewMediaStorage(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize media storage: %v — image uploads disabled", err)
			media = nil
		}
	}

	// Basic health endpoint
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Up and running"})
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["database"] = db.PingContext(c.Request.Context()) == nil
		if !deps["database"] {
			ready = false
		}
		// Redis is best-effort: report it but never fail readiness on it
		if redisClient != nil {
			deps["redis"] = redisClient.Ping(c.Request.Context()).Err() == nil
		} else {
			deps["redis"] = cfg.Redis.Host == ""
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	api := r.Group("/api/v1")
	handlers.NewUserHandler(userSvc).Register(api)
	handlers.NewContentHandler(contentSvc, media).Register(api)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting content service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
