package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usermodel "warehouse-picking-backend/internal/domains/user/model"
	"warehouse-picking-backend/internal/shared/middleware"
	"warehouse-picking-backend/pkg/container"
)

// setupRouter builds the gin engine and mounts every domain.
//
// Route gates:
//   - /api/auth/login, /api/auth/refresh  public
//   - /api/...                            any authenticated user
//   - order state reversals, splitting    admin and superadmin (gated in the
//     order handler), same for user CRUD
//   - /api/admin/...                      superadmin only (settings, sync,
//     notifier tests)
func setupRouter(c *container.Container) *gin.Engine {
	if c.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	router.GET("/health", healthHandler(c))

	api := router.Group("/api")

	loginLimiter := middleware.NewLoginRateLimiter(10, 5)
	c.UserHandler.RegisterPublicRoutes(api, loginLimiter.Middleware())

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(c.JWTManager))

	c.UserHandler.RegisterRoutes(authed)
	c.OrderHandler.RegisterRoutes(authed)
	c.PickingHandler.RegisterRoutes(authed)
	c.ExceptionHandler.RegisterRoutes(authed)
	c.NotificationHandler.RegisterRoutes(authed)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(usermodel.RoleSuperadmin))
	c.SettingsHandler.RegisterRoutes(admin)
	c.ImporterHandler.RegisterRoutes(admin)
	c.NotificationHandler.RegisterAdminRoutes(admin)

	return router
}

func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := c.Postgres.HealthCheck(ctx.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
