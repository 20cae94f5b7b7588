package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/repository/memory"
	"todo_webapp/internal/service"
	"todo_webapp/internal/session"
	"todo_webapp/internal/web"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	var (
		users  service.UserStore
		tasks  service.TaskStore
		audits service.AuditStore
		checks = map[string]handlers.Pinger{}
	)
	if cfg.DatabaseURL != "" {
		dbPool := db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Migrate(ctx, dbPool); err != nil {
			cancel()
			logger.Fatal("failed to apply migrations", "error", err)
		}
		cancel()

		users = repository.NewUserRepository(dbPool)
		tasks = repository.NewTaskRepository(dbPool)
		audits = repository.NewAuditRepository(dbPool)
		checks["database"] = dbPool
	} else {
		logger.Warn("DEV_MODE without DATABASE_URL: data lives in memory only")
		mem := memory.New()
		users, tasks, audits = mem.Users(), mem.Tasks(), mem.Audit()
	}

	var sessions session.Store = session.NewMemoryStore()
	redisClient := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient)
		checks["redis"] = db.RedisPinger{Client: redisClient}
	}

	tmpl, err := web.Templates(cfg.Location)
	if err != nil {
		logger.Fatal("failed to parse templates", "error", err)
	}

	hub := ws.NewHub()
	h := handlers.NewHandler(
		service.NewAuthService(users, sessions, service.AuthOptions{
			SessionTTL:        cfg.SessionTTL,
			RevealUnknownUser: cfg.LoginRevealUnknownUser,
		}),
		service.NewTaskService(tasks, cfg.PageSize, hub),
		service.NewAuditService(audits),
		session.NewCodec(cfg.SessionSecret),
		hub,
		handlers.HandlerConfig{
			CookieSecure:  cfg.CookieSecure,
			Location:      cfg.Location,
			AllowedOrigin: cfg.AllowedOrigin,
		},
	)

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.SetHTMLTemplate(tmpl)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, h, handlers.NewHealthHandler(checks, version), middleware.NewRateLimiter(redisClient), httpServer.Limits{
		AuthRate:   cfg.AuthRateLimit,
		AuthWindow: cfg.AuthRateWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
