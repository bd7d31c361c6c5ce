package routes

import (
	"net/http"

	"smart-locker/internal/config"
	"smart-locker/internal/delivery/http/handler"
	"smart-locker/internal/infrastructure/database/postgres"
	"smart-locker/internal/logger"
	"smart-locker/internal/middleware"
	"smart-locker/internal/usecase/admin"
	"smart-locker/internal/usecase/auth"
	"smart-locker/internal/usecase/locker"
	"smart-locker/internal/usecase/session"
	"smart-locker/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps carries the long-lived components main owns; the router wires
// handlers around them.
type Deps struct {
	DB          *postgres.DB
	AuthService *auth.Service
	Lockers     *locker.Service
	Admin       *admin.Service
	Sessions    *session.Manager
	WS          *ws.Manager
}

func SetupRoutes(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler.RegisterValidations()

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security
	// headers, CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := deps.DB.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Sessions)
	lockerHandler := handler.NewLockerHandler(deps.Lockers, deps.Sessions)
	adminHandler := handler.NewAdminHandler(deps.Admin, deps.Sessions)
	wsHandler := handler.NewWSHandler(deps.WS, deps.Lockers)

	router.GET("/ws", wsHandler.Serve)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
		{
			authHandler.RegisterProtectedRoutes(protected)
			lockerHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterRoutes(adminGroup)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
