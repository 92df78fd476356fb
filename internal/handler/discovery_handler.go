// internal/handler/discovery_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-discovery/internal/discovery"
	"serial-discovery/internal/discovery/udev"
	"serial-discovery/internal/repository"
	"serial-discovery/internal/service"
	"serial-discovery/internal/utils"
)

// DiscoveryHandler handles device discovery requests
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveryService *service.DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// RegisterRoutes registers discovery routes
func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/scan", h.ScanDevices)
	router.GET("/ports", h.ListPorts)
	router.GET("/scanners", h.GetScanners)
	router.GET("/history", h.ListHistory)
	router.GET("/history/:run_id", h.GetRun)
}

// ScanDevices scans for available devices
// @Summary Scan for devices
// @Description Enumerate serial ports and identify the attached adapters
// @Tags Discovery
// @Accept json
// @Produce json
// @Param type query string false "Scan type" Enums(all, serial) default(all)
// @Param timeout query string false "Scan timeout" default(30s)
// @Success 200 {object} utils.APIResponse{data=service.ScanResult} "Device scan completed"
// @Failure 400 {object} utils.APIResponse "Invalid scan parameters"
// @Failure 504 {object} utils.APIResponse "Scan timed out"
// @Failure 500 {object} utils.APIResponse "Scan failed"
// @Router /discovery/scan [get]
func (h *DiscoveryHandler) ScanDevices(c *gin.Context) {
	req := &service.ScanRequest{
		ScanType: c.DefaultQuery("type", service.ScanTypeAll),
		Timeout:  c.Query("timeout"),
	}

	result, err := h.discoveryService.ScanDevices(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to scan devices", zap.Error(err))
		utils.ErrorResponse(c, scanErrorStatus(err), "Failed to scan devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device scan completed", result)
}

// ListPorts returns the raw serial port records
// @Summary List serial ports
// @Description List active serial ports with the properties reported by udev
// @Tags Discovery
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{count=int,ports=[]model.PortInfo}} "Ports listed"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /discovery/ports [get]
func (h *DiscoveryHandler) ListPorts(c *gin.Context) {
	ports, err := h.discoveryService.ListPorts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list ports", zap.Error(err))
		utils.ErrorResponse(c, scanErrorStatus(err), "Failed to list ports", err)
		return
	}

	utils.ListResponse(c, "Ports listed", "ports", ports, len(ports))
}

// GetScanners returns the available scanner types
// @Summary Available scanners
// @Tags Discovery
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{scanners=[]string}} "Scanners listed"
// @Router /discovery/scanners [get]
func (h *DiscoveryHandler) GetScanners(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Scanners listed", gin.H{
		"scanners": h.discoveryService.GetAvailableScanners(),
	})
}

// ListHistory returns recorded scan runs
// @Summary Scan history
// @Description List recorded scan runs, newest first
// @Tags Discovery
// @Produce json
// @Param limit query int false "Maximum number of runs"
// @Param scan_type query string false "Filter by scan type" Enums(all, serial)
// @Param port query string false "Filter by device path"
// @Success 200 {object} utils.APIResponse{data=object{count=int,runs=[]model.ScanRun}} "History retrieved"
// @Failure 400 {object} utils.APIResponse "Invalid limit"
// @Router /discovery/history [get]
func (h *DiscoveryHandler) ListHistory(c *gin.Context) {
	req := &service.HistoryRequest{
		ScanType: c.Query("scan_type"),
		Port:     c.Query("port"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			utils.ValidationErrorResponse(c, map[string]string{
				"limit": "must be a non-negative integer",
			})
			return
		}
		req.Limit = limit
	}

	runs, err := h.discoveryService.ListHistory(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list history", err)
		return
	}

	utils.ListResponse(c, "History retrieved", "runs", runs, len(runs))
}

// GetRun returns one recorded scan run
// @Summary Scan run
// @Tags Discovery
// @Produce json
// @Param run_id path string true "Run ID"
// @Success 200 {object} utils.APIResponse{data=model.ScanRun} "Run retrieved"
// @Failure 400 {object} utils.APIResponse "Invalid run ID"
// @Failure 404 {object} utils.APIResponse "Run not found"
// @Router /discovery/history/{run_id} [get]
func (h *DiscoveryHandler) GetRun(c *gin.Context) {
	run, err := h.discoveryService.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRunID):
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid run ID", err)
		case errors.Is(err, repository.ErrScanRunNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, "Scan run not found", err)
		default:
			h.logger.Error("Failed to get scan run", zap.Error(err))
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get scan run", err)
		}
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Run retrieved", run)
}

// scanErrorStatus maps discovery failures to HTTP status codes
func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidScanType), errors.Is(err, service.ErrInvalidTimeout):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), udev.IsCanceled(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, discovery.ErrScannerNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
