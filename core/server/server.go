package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"meetsync/core/cache"
	"meetsync/core/config"
	"meetsync/core/constants"
	"meetsync/core/database"
	"meetsync/core/jobs"
	"meetsync/core/logger"
	"meetsync/core/middleware"
	"meetsync/modules/auth"
	"meetsync/modules/calendar"
	"meetsync/modules/invitation"
	"meetsync/modules/meeting"
	"meetsync/modules/notification"
)

// Run wires the application together and blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Server:Start", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Server:Shutdown:CloseDB", "error", err)
		}
	}()

	redisCfg := cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	c, err := cache.NewRedisCache(redisCfg)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	jobsRedis := jobs.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	jobsClient := jobs.NewClient(jobsRedis)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Error("Server:Shutdown:CloseJobs", "error", err)
		}
	}()
	jobsServer := jobs.NewServer(jobsRedis)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warn("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
			} else {
				logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status)
			}
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware()

	// Notification first so the other modules can fan out through it, then
	// invitation and calendar as the meeting module's collaborators.
	notificationSvc := notification.Init(e, db, mw, jobsClient, jobsServer)
	invitationSvc := invitation.Init(e, db, mw, notificationSvc)
	calendarSvc := calendar.Init(e, db, c, mw)
	meeting.Init(e, db, mw, calendarSvc, invitationSvc, invitationSvc, notificationSvc)
	auth.Init(e, db, c, calendarSvc)

	if err := jobsServer.Start(); err != nil {
		return fmt.Errorf("start jobs server: %w", err)
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server:Shutdown", "reason", "signal received")

	jobsServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultRequestTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
