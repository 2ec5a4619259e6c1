package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/flights-backend-go/internal/api"
	"github.com/jengzang/flights-backend-go/internal/config"
	"github.com/jengzang/flights-backend-go/internal/database"
	"github.com/jengzang/flights-backend-go/internal/live"
	"github.com/jengzang/flights-backend-go/internal/logger"
	"github.com/jengzang/flights-backend-go/internal/middleware"
	"github.com/jengzang/flights-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()
	log := logger.Setup(cfg.Env)
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 只读连接，写入由 pipeline 负责
	db, err := database.Open(database.Config{Path: cfg.DBPath, ReadOnly: true})
	if err != nil {
		log.Error("failed to open database", logger.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	dashboard := service.NewDashboardService(db)
	broadcaster := live.NewBroadcaster(log.With("component", "websocket"))
	watcher := live.NewCycleWatcher(dashboard, broadcaster, cfg.WatchInterval, log.With("component", "watcher"))
	go watcher.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	// 初始化路由
	router := api.SetupRouter(cfg, log, dashboard, broadcaster, limiter)
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown failed", logger.Err(err))
		}
	}()

	// 启动服务器
	log.Info("server starting", "addr", cfg.Port, "db", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", logger.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
