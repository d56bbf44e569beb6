package service

import (
	"fmt"
	"time"

	"parking_facility/internal/domain"
)

// TicketLedger owns ticket records, ticket-number issuance and status
// transitions. Numbers are strictly increasing and never reused; records are
// retained indefinitely. All mutation happens under the facility lock.
type TicketLedger struct {
	tickets         map[int]*domain.Ticket
	activeByVehicle map[string]int
	nextTicketNo    int
}

// NewTicketLedger issues numbers strictly above numberFloor.
func NewTicketLedger(numberFloor int) *TicketLedger {
	return &TicketLedger{
		tickets:         make(map[int]*domain.Ticket),
		activeByVehicle: make(map[string]int),
		nextTicketNo:    numberFloor + 1,
	}
}

// HasActive reports whether the vehicle currently holds a non-terminal ticket.
func (l *TicketLedger) HasActive(license string) bool {
	_, ok := l.activeByVehicle[license]
	return ok
}

// Issue creates a new ticket for an already-reserved spot. The caller has
// matched and reserved the spot; ledger state is the last step of the atomic
// issuance unit, so a duplicate-vehicle hit here must make the caller unwind
// the reservation.
func (l *TicketLedger) Issue(license string, class domain.VehicleClass, entranceID, spotID int, entryTime time.Time, activate bool) (*domain.Ticket, error) {
	if l.HasActive(license) {
		return nil, fmt.Errorf("vehicle %q: %w", license, domain.ErrAlreadyParked)
	}
	ticket := &domain.Ticket{
		TicketNo:       l.nextTicketNo,
		VehicleLicense: license,
		VehicleClass:   class,
		SpotID:         spotID,
		EntranceID:     entranceID,
		EntryTime:      entryTime,
		Status:         domain.TicketIssued,
	}
	l.nextTicketNo++
	if activate {
		// Normal flow: no externally observable ISSUED-only state.
		if err := ticket.Advance(domain.TicketInUse); err != nil {
			return nil, err
		}
	}
	l.tickets[ticket.TicketNo] = ticket
	l.activeByVehicle[license] = ticket.TicketNo
	return ticket, nil
}

// get returns the live record for in-ledger mutation.
func (l *TicketLedger) get(ticketNo int) (*domain.Ticket, error) {
	ticket, ok := l.tickets[ticketNo]
	if !ok {
		return nil, fmt.Errorf("ticket %d: %w", ticketNo, domain.ErrUnknownTicket)
	}
	return ticket, nil
}

// Get returns a copy safe to hand outside the lock.
func (l *TicketLedger) Get(ticketNo int) (*domain.Ticket, error) {
	ticket, err := l.get(ticketNo)
	if err != nil {
		return nil, err
	}
	return copyTicket(ticket), nil
}

// Activate advances a held ISSUED ticket to IN_USE.
func (l *TicketLedger) Activate(ticketNo int) (*domain.Ticket, error) {
	ticket, err := l.get(ticketNo)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketIssued {
		return nil, fmt.Errorf("ticket %d is %s: %w", ticketNo, ticket.Status, domain.ErrInvalidTicketState)
	}
	if err := ticket.Advance(domain.TicketInUse); err != nil {
		return nil, err
	}
	return copyTicket(ticket), nil
}

// ClearActive drops the vehicle's active-ticket back-reference once its
// ticket reaches a terminal status.
func (l *TicketLedger) ClearActive(license string) {
	delete(l.activeByVehicle, license)
}

func (l *TicketLedger) ActiveCount() int {
	return len(l.activeByVehicle)
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	c := *t
	if t.Payment != nil {
		p := *t.Payment
		c.Payment = &p
	}
	return &c
}
