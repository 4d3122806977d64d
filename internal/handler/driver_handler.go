package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/middleware"
	"driver_dashboard/internal/model"
	"driver_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// DriverHandler handles driver related requests
type DriverHandler struct {
	service service.DriverService
	log     logger.ILogger
}

// NewDriverHandler creates a new DriverHandler
func NewDriverHandler(s service.DriverService, log logger.ILogger) *DriverHandler {
	return &DriverHandler{service: s, log: log}
}

func filterFromQuery(c *gin.Context) model.DriverFilter {
	return model.DriverFilter{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		Fahrzeugtyp: c.Query("fahrzeugtyp"),
	}
}

func parseDriverID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID"})
		return 0, false
	}
	return id, true
}

// respondError maps service errors to status codes. Unexpected errors are logged
// and answered with a generic message.
func (h *DriverHandler) respondError(c *gin.Context, err error, action string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
	case errors.Is(err, service.ErrDriverNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
	case errors.Is(err, service.ErrForbidden):
		h.log.Warning("forbidden driver change", logger.String("path", c.Request.URL.Path), logger.Error(err))
		c.JSON(http.StatusForbidden, gin.H{"error": "Partners can only change status"})
	default:
		h.log.Error("failed to "+action, logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.service.ListDrivers(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.respondError(c, err, "retrieve drivers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

func (h *DriverHandler) GetDriver(c *gin.Context) {
	id, ok := parseDriverID(c)
	if !ok {
		return
	}

	driver, err := h.service.GetDriver(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "retrieve driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	driver, err := h.service.CreateDriver(c.Request.Context(), req.toCreateInput())
	if err != nil {
		h.respondError(c, err, "create driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "driver": driver})
}

func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, ok := parseDriverID(c)
	if !ok {
		return
	}

	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	driver, err := h.service.UpdateDriver(c.Request.Context(), id, req.toPatch(), identity.Role)
	if err != nil {
		h.respondError(c, err, "update driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "driver": driver})
}

func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	id, ok := parseDriverID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDriver(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *DriverHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "retrieve statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DriverHandler) ExportDrivers(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	filter := filterFromQuery(c)
	stamp := time.Now().Format("20060102_150405")

	switch format {
	case "csv":
		buf, err := h.service.ExportCSV(c.Request.Context(), filter)
		if err != nil {
			h.respondError(c, err, "export drivers to CSV")
			return
		}
		fileName := fmt.Sprintf("drivers_export_%s.csv", stamp)
		c.Header("Content-Description", "File Transfer")
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	case "xlsx":
		buf, err := h.service.ExportXLSX(c.Request.Context(), filter)
		if err != nil {
			h.respondError(c, err, "export drivers to XLSX")
			return
		}
		fileName := fmt.Sprintf("drivers_export_%s.xlsx", stamp)
		c.Header("Content-Description", "File Transfer")
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format, use csv or xlsx"})
	}
}

// RegisterDriverRoutes registers driver routes behind authMW
func (h *DriverHandler) RegisterDriverRoutes(rg *gin.RouterGroup, adminMW gin.HandlerFunc, authMW ...gin.HandlerFunc) {
	protected := rg.Group("", authMW...)

	driverRoutes := protected.Group("/drivers")
	{
		driverRoutes.GET("", h.ListDrivers)
		driverRoutes.GET("/:id", h.GetDriver)
		driverRoutes.POST("", adminMW, h.CreateDriver)
		driverRoutes.PUT("/:id", h.UpdateDriver) // Service layer enforces the partner rules
		driverRoutes.DELETE("/:id", adminMW, h.DeleteDriver)
	}

	protected.GET("/stats", h.GetStats)
	protected.GET("/export/drivers", adminMW, h.ExportDrivers)
}
