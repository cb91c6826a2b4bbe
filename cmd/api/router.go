package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/internal/shared/middleware"
	"book-catalog-api/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	v1.Use(c.RateLimiter.Middleware())
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupBookRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/make-admin",
			middleware.Auth(c.JWTManager),
			middleware.RequireRoles(user.RoleAdmin.String()),
			c.UserHandler.MakeAdmin,
		)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	books.Use(middleware.Auth(c.JWTManager))

	// Reads: mọi user đã đăng nhập
	readers := books.Group("", middleware.RequireRoles(user.RoleUser.String(), user.RoleAdmin.String()))
	{
		readers.GET("", c.BookHandler.ListBooks)
		readers.GET("/ranking", c.BookHandler.GetRanking)
		readers.GET("/:id", c.BookHandler.GetBookDetail)
	}

	// Writes + export: admin only
	admin := books.Group("", middleware.RequireRoles(user.RoleAdmin.String()))
	{
		admin.GET("/export", c.BookHandler.ExportBooks)
		admin.POST("/single", c.BookHandler.CreateBook)
		admin.POST("/bulk", c.BookHandler.CreateBooksBulk)
		admin.PUT("/:id", c.BookHandler.UpdateBook)
		admin.DELETE("/bulk", c.BookHandler.DeleteBooksBulk)
		admin.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}
		status := http.StatusOK

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error: " + err.Error()
			}
		}
		if dbStatus != "ok" {
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		// Check cache; cache lỗi không làm service unavailable
		cacheStatus := "ok"
		if appCtx.Cache == nil {
			cacheStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				cacheStatus = "error: " + err.Error()
				health["status"] = "degraded"
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"cache":    cacheStatus,
		}
		if appCtx.DB != nil {
			if stats := appCtx.DB.Stats(); stats != nil {
				health["pool"] = stats
			}
		}

		c.JSON(status, health)
	}
}
