package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_facility/internal/service"
)

// DisplayHandler serves the read-only views the display boards poll.
type DisplayHandler struct {
	facility *service.FacilityService
}

func NewDisplayHandler(fs *service.FacilityService) *DisplayHandler {
	return &DisplayHandler{facility: fs}
}

// GET /spots
func (h *DisplayHandler) ListSpots(c *gin.Context) {
	c.JSON(http.StatusOK, h.facility.SnapshotSpots(c.Request.Context()))
}

// GET /floors/:name/spots
func (h *DisplayHandler) FloorSpots(c *gin.Context) {
	spots, err := h.facility.FloorSpots(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// GET /status
func (h *DisplayHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.facility.Status(c.Request.Context()))
}
