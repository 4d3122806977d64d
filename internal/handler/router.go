package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/middleware"
	"driver_dashboard/internal/service"
	"driver_dashboard/internal/session"
	"driver_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Pinger reports backend health for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps carries everything SetupRouter wires together.
type RouterDeps struct {
	Drivers  service.DriverService
	Auth     service.AuthService
	Sessions session.Store
	JWT      *utils.JWTUtil
	Storage  Pinger
	Cookie   CookieConfig
	Log      logger.ILogger
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.tmpl")
}

// SetupRouter builds the gin engine with all routes registered
func SetupRouter(deps RouterDeps) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Authenticate(deps.Sessions, deps.JWT, deps.Cookie.Name))
	router.SetHTMLTemplate(tmpl)

	authHandler := NewAuthHandler(deps.Auth, deps.Sessions, deps.Cookie, deps.Log)
	driverHandler := NewDriverHandler(deps.Drivers, deps.Log)
	pageHandler := NewPageHandler(deps.Drivers, deps.Log)

	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(router, apiGroup)
	driverHandler.RegisterDriverRoutes(apiGroup, middleware.AdminMiddleware(),
		middleware.RequireAPIAuth(), middleware.StaffMiddleware())
	pageHandler.RegisterPageRoutes(router, middleware.RequirePageAuth())

	router.GET("/health", func(c *gin.Context) {
		if deps.Storage != nil {
			if err := deps.Storage.Ping(c.Request.Context()); err != nil {
				deps.Log.Error("health check failed", logger.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "storage": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "healthy"})
	})

	return router, nil
}
