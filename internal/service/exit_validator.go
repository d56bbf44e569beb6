package service

import (
	"fmt"

	"gopkg.in/guregu/null.v4"

	"parking_facility/internal/domain"
)

// ExitValidator is the final gate before a vehicle leaves: it confirms the
// ticket is paid, frees the spot and clears the vehicle's active-ticket link.
type ExitValidator struct {
	ledger   *TicketLedger
	registry *SpotRegistry
}

func NewExitValidator(ledger *TicketLedger, registry *SpotRegistry) *ExitValidator {
	return &ExitValidator{ledger: ledger, registry: registry}
}

// Validate rejects any ticket that is not PAID without touching state.
func (v *ExitValidator) Validate(ticketNo, exitID int) (*domain.Ticket, error) {
	ticket, err := v.ledger.get(ticketNo)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketPaid {
		return nil, fmt.Errorf("ticket %d is %s, not paid: %w",
			ticketNo, ticket.Status, domain.ErrInvalidTicketState)
	}
	if err := ticket.Advance(domain.TicketValidated); err != nil {
		return nil, err
	}
	if err := v.registry.Release(ticket.SpotID); err != nil {
		return nil, fmt.Errorf("release spot for ticket %d: %w", ticketNo, err)
	}
	v.ledger.ClearActive(ticket.VehicleLicense)
	ticket.ExitID = null.IntFrom(int64(exitID))
	return copyTicket(ticket), nil
}
