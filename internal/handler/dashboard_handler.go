package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/models"
	"github.com/jengzang/flights-backend-go/internal/service"
	"github.com/jengzang/flights-backend-go/pkg/response"
)

const notReadyMessage = "data not yet available, waiting for the first load cycle"

// DashboardHandler handles HTTP requests for the dashboard
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetOverview handles GET /api/v1/overview
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.dashboardService.GetOverview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, overview)
}

// GetFlights handles GET /api/v1/flights
func (h *DashboardHandler) GetFlights(c *gin.Context) {
	var filter models.FlightFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	flights, err := h.dashboardService.GetFlights(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, flights)
}

// GetFlightHistory handles GET /api/v1/flights/:icao24/history
func (h *DashboardHandler) GetFlightHistory(c *gin.Context) {
	versions, err := h.dashboardService.GetFlightHistory(c.Request.Context(), c.Param("icao24"), c.Query("callsign"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, versions)
}

// GetAlerts handles GET /api/v1/alerts
func (h *DashboardHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.dashboardService.GetAlerts(c.Request.Context(), c.QueryArray("country"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, alerts)
}

// GetCountries handles GET /api/v1/countries
func (h *DashboardHandler) GetCountries(c *gin.Context) {
	countries, err := h.dashboardService.GetCountries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, countries)
}

// GetTopCountries handles GET /api/v1/traffic/countries
func (h *DashboardHandler) GetTopCountries(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultTopCountries)
	if !ok {
		return
	}

	traffic, err := h.dashboardService.GetTopCountries(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, traffic)
}

// GetAltitudeProfile handles GET /api/v1/traffic/altitude
func (h *DashboardHandler) GetAltitudeProfile(c *gin.Context) {
	bands, err := h.dashboardService.GetAltitudeProfile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, bands)
}

// GetAltitudeFloors handles GET /api/v1/traffic/floors
func (h *DashboardHandler) GetAltitudeFloors(c *gin.Context) {
	width, ok := queryInt(c, "width", service.DefaultFloorWidth)
	if !ok {
		return
	}

	floors, err := h.dashboardService.GetAltitudeFloors(c.Request.Context(), width)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, floors)
}

// GetTrafficHistory handles GET /api/v1/traffic/history
func (h *DashboardHandler) GetTrafficHistory(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultHistoryLimit)
	if !ok {
		return
	}

	history, err := h.dashboardService.GetTrafficHistory(c.Request.Context(), c.Query("country"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, history)
}

// GetTrajectory handles GET /api/v1/tracks/:callsign
func (h *DashboardHandler) GetTrajectory(c *gin.Context) {
	track, err := h.dashboardService.GetTrajectory(c.Request.Context(), c.Param("callsign"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, track)
}

// GetCycles handles GET /api/v1/admin/cycles
func (h *DashboardHandler) GetCycles(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}

	cycles, err := h.dashboardService.GetCycles(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, cycles)
}

// writeError maps service errors to responses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotReady):
		response.Unavailable(c, notReadyMessage)
	case errors.Is(err, apperr.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, apperr.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		c.Error(err)
		response.InternalError(c, "Failed to query the flight store")
	}
}

func queryInt(c *gin.Context, key string, defaultVal int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		response.BadRequest(c, "Invalid "+key+" parameter")
		return 0, false
	}
	return v, true
}
