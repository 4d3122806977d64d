package handler

import (
	"net/http"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/middleware"
	"driver_dashboard/internal/model"
	"driver_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// PageHandler renders the server-side pages
type PageHandler struct {
	drivers service.DriverService
	log     logger.ILogger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(drivers service.DriverService, log logger.ILogger) *PageHandler {
	return &PageHandler{drivers: drivers, log: log}
}

func (h *PageHandler) Index(c *gin.Context) {
	if _, ok := middleware.GetIdentity(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	filter := filterFromQuery(c)

	stats, err := h.drivers.GetStats(c.Request.Context())
	if err != nil {
		h.log.Error("failed to load dashboard stats", logger.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	drivers, err := h.drivers.ListDrivers(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("failed to load dashboard drivers", logger.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
		"user":     identity,
		"isAdmin":  identity.Role == model.RoleAdmin,
		"stats":    stats,
		"drivers":  drivers,
		"filter":   filter,
		"statuses": model.Statuses,
	})
}

// RegisterPageRoutes registers the HTML pages
func (h *PageHandler) RegisterPageRoutes(r gin.IRouter, pageAuthMW gin.HandlerFunc) {
	r.GET("/", h.Index)
	r.GET("/dashboard", pageAuthMW, h.Dashboard)
}
