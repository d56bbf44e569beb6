package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking_facility/internal/domain"
	"parking_facility/internal/service"
)

type TicketHandler struct {
	facility *service.FacilityService
}

func NewTicketHandler(fs *service.FacilityService) *TicketHandler {
	return &TicketHandler{facility: fs}
}

// respondEngineError maps the engine's error kinds onto HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownTicket),
		errors.Is(err, domain.ErrUnknownEntrance),
		errors.Is(err, domain.ErrUnknownExit),
		errors.Is(err, domain.ErrUnknownFloor),
		errors.Is(err, domain.ErrUnknownSpot):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLotFull),
		errors.Is(err, domain.ErrAlreadyParked),
		errors.Is(err, domain.ErrInvalidTicketState),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrSpotOccupied),
		errors.Is(err, domain.ErrSpotFree):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}

func ticketNoParam(c *gin.Context) (int, bool) {
	no, err := strconv.Atoi(c.Param("no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket number"})
		return 0, false
	}
	return no, true
}

// POST /tickets — entrance panel request.
func (h *TicketHandler) RequestTicket(c *gin.Context) {
	var dto domain.TicketRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	ticket, err := h.facility.RequestTicket(c.Request.Context(), dto)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// GET /tickets/:no
func (h *TicketHandler) GetTicket(c *gin.Context) {
	no, ok := ticketNoParam(c)
	if !ok {
		return
	}
	ticket, err := h.facility.GetTicket(c.Request.Context(), no)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /tickets/:no/activate — confirms a held ISSUED ticket.
func (h *TicketHandler) ActivateTicket(c *gin.Context) {
	no, ok := ticketNoParam(c)
	if !ok {
		return
	}
	ticket, err := h.facility.ActivateTicket(c.Request.Context(), no)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /tickets/:no/pay — kiosk prepayment.
func (h *TicketHandler) PayTicket(c *gin.Context) {
	no, ok := ticketNoParam(c)
	if !ok {
		return
	}
	var dto domain.PayTicketDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	ticket, err := h.facility.PayTicket(c.Request.Context(), no, domain.PaymentMethod(dto.Method))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /exit — exit panel: pay if needed, then validate.
func (h *TicketHandler) RequestExit(c *gin.Context) {
	var dto domain.ExitRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	resp, err := h.facility.RequestExit(c.Request.Context(), dto)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /tickets/:no/cancel — admin only.
func (h *TicketHandler) CancelTicket(c *gin.Context) {
	no, ok := ticketNoParam(c)
	if !ok {
		return
	}
	ticket, err := h.facility.CancelTicket(c.Request.Context(), no)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /tickets/:no/refund — admin only.
func (h *TicketHandler) RefundTicket(c *gin.Context) {
	no, ok := ticketNoParam(c)
	if !ok {
		return
	}
	ticket, err := h.facility.RefundTicket(c.Request.Context(), no)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
