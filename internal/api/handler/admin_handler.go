package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_facility/internal/domain"
	"parking_facility/internal/service"
)

// AdminHandler covers the facility-layout and tariff endpoints. All of
// these sit behind the admin role.
type AdminHandler struct {
	facility *service.FacilityService
}

func NewAdminHandler(fs *service.FacilityService) *AdminHandler {
	return &AdminHandler{facility: fs}
}

// POST /floors
func (h *AdminHandler) AddFloor(c *gin.Context) {
	var dto domain.FloorDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	floor, err := h.facility.AddFloor(c.Request.Context(), dto)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, floor)
}

// POST /floors/:name/spots
func (h *AdminHandler) AddSpot(c *gin.Context) {
	var dto domain.SpotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	spot, err := h.facility.AddSpot(c.Request.Context(), c.Param("name"), dto)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// POST /entrances
func (h *AdminHandler) AddEntrance(c *gin.Context) {
	var dto domain.PanelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	entrance, err := h.facility.AddEntrance(c.Request.Context(), dto)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entrance)
}

// POST /exits
func (h *AdminHandler) AddExit(c *gin.Context) {
	var dto domain.PanelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	exit, err := h.facility.AddExit(c.Request.Context(), dto)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exit)
}

// PUT /rate
func (h *AdminHandler) SetRate(c *gin.Context) {
	var dto domain.RateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	h.facility.SetBaseRate(c.Request.Context(), dto.BaseRatePerHour)
	c.JSON(http.StatusOK, gin.H{"base_rate_per_hour": dto.BaseRatePerHour})
}
