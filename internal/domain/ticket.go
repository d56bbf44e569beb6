package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type TicketStatus string

const (
	TicketIssued    TicketStatus = "issued"
	TicketInUse     TicketStatus = "in_use"
	TicketPaid      TicketStatus = "paid"
	TicketValidated TicketStatus = "validated"
	TicketCanceled  TicketStatus = "canceled"
	TicketRefunded  TicketStatus = "refunded"
)

// ticketTransitions is the complete status machine. Statuses absent from the
// map are terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketIssued: {TicketInUse},
	TicketInUse:  {TicketPaid, TicketCanceled, TicketRefunded},
	TicketPaid:   {TicketValidated, TicketCanceled, TicketRefunded},
}

func (s TicketStatus) CanTransition(to TicketStatus) bool {
	for _, next := range ticketTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s TicketStatus) Terminal() bool {
	return len(ticketTransitions[s]) == 0
}

// Ticket is the record of one occupancy session from entry to settled exit.
// After creation only Status, ExitTime, Amount and Payment change; the record
// is retained indefinitely and queryable by number.
type Ticket struct {
	TicketNo       int          `json:"ticket_no"`
	VehicleLicense string       `json:"vehicle_license"`
	VehicleClass   VehicleClass `json:"vehicle_class"`
	SpotID         int          `json:"spot_id"`
	EntranceID     int          `json:"entrance_id"`
	ExitID         null.Int     `json:"exit_id"`
	EntryTime      time.Time    `json:"entry_time"`
	ExitTime       null.Time    `json:"exit_time"`
	Amount         float64      `json:"amount"`
	Status         TicketStatus `json:"status"`
	Payment        *Payment     `json:"payment,omitempty"`
}

// Advance moves the ticket to the requested status, rejecting anything the
// transition table does not allow.
func (t *Ticket) Advance(to TicketStatus) error {
	if !t.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	t.Status = to
	return nil
}

type TicketRequestDTO struct {
	EntranceID     int    `json:"entrance_id" binding:"required"`
	VehicleLicense string `json:"vehicle_license" binding:"required"`
	VehicleClass   string `json:"vehicle_class" binding:"required"`
}

type PayTicketDTO struct {
	Method string `json:"method" binding:"required"`
}

type ExitRequestDTO struct {
	ExitID   int    `json:"exit_id" binding:"required"`
	TicketNo int    `json:"ticket_no" binding:"required"`
	Method   string `json:"method" binding:"required"`
}

// ExitResponseDTO is what the exit panel shows the driver.
type ExitResponseDTO struct {
	TicketNo      int     `json:"ticket_no"`
	AmountCharged float64 `json:"amount_charged"`
	Validated     bool    `json:"validated"`
}
