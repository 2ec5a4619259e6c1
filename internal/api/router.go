package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/flights-backend-go/internal/config"
	"github.com/jengzang/flights-backend-go/internal/handler"
	"github.com/jengzang/flights-backend-go/internal/live"
	"github.com/jengzang/flights-backend-go/internal/middleware"
	"github.com/jengzang/flights-backend-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, log *slog.Logger, dashboard *service.DashboardService, broadcaster *live.Broadcaster, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Flights Backend API is running",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	if broadcaster != nil {
		r.GET("/ws", gin.WrapH(broadcaster))
	}

	h := handler.NewDashboardHandler(dashboard)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		api.GET("/overview", h.GetOverview)
		api.GET("/flights", h.GetFlights)
		api.GET("/flights/:icao24/history", h.GetFlightHistory)
		api.GET("/alerts", h.GetAlerts)
		api.GET("/countries", h.GetCountries)

		// 航迹
		api.GET("/tracks/:callsign", h.GetTrajectory)

		// 流量统计
		traffic := api.Group("/traffic")
		{
			traffic.GET("/countries", h.GetTopCountries)
			traffic.GET("/altitude", h.GetAltitudeProfile)
			traffic.GET("/floors", h.GetAltitudeFloors)
			traffic.GET("/history", h.GetTrafficHistory)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole([]byte(cfg.JWTSecret), middleware.AdminRole))
		{
			admin.GET("/cycles", h.GetCycles)
		}
	}

	return r
}
