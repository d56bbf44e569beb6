package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"parking_facility/internal/domain"
)

// PaymentGateway is the external charge boundary. The engine defines no retry
// policy; a declined charge leaves the ticket payable and retry is the
// caller's business.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, method domain.PaymentMethod) error
}

type simulatedGateway struct{}

// NewSimulatedGateway approves every charge. Real gateway integration is a
// deployment concern outside this engine.
func NewSimulatedGateway() PaymentGateway {
	return simulatedGateway{}
}

func (simulatedGateway) Charge(ctx context.Context, amount float64, method domain.PaymentMethod) error {
	return nil
}

// PaymentProcessor advances a ticket's payment sub-state.
type PaymentProcessor struct {
	ledger  *TicketLedger
	rates   *RateCalculator
	gateway PaymentGateway
	now     func() time.Time
}

func NewPaymentProcessor(ledger *TicketLedger, rates *RateCalculator, gateway PaymentGateway, now func() time.Time) *PaymentProcessor {
	return &PaymentProcessor{ledger: ledger, rates: rates, gateway: gateway, now: now}
}

// Pay computes the fee for the stay so far and attempts the charge. On
// success the ticket gets its amount, payment record, exit time and PAID
// status. On a declined charge the ticket stays IN_USE so a later retry
// bills a freshly computed duration.
func (p *PaymentProcessor) Pay(ctx context.Context, ticketNo int, method domain.PaymentMethod) (*domain.Ticket, error) {
	ticket, err := p.ledger.get(ticketNo)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketInUse {
		return nil, fmt.Errorf("ticket %d is %s, expected %s: %w",
			ticketNo, ticket.Status, domain.TicketInUse, domain.ErrInvalidTicketState)
	}

	now := p.now()
	amount := p.rates.FeeForDuration(now.Sub(ticket.EntryTime))

	payment := &domain.Payment{
		ID:     uuid.NewString(),
		Amount: amount,
		Method: method,
		Status: domain.PaymentPending,
	}
	if err := p.gateway.Charge(ctx, amount, method); err != nil {
		payment.Status = domain.PaymentFailed
		return nil, fmt.Errorf("charge of %.2f declined: %w", amount, domain.ErrPaymentFailed)
	}
	payment.Status = domain.PaymentCompleted
	payment.CompletedAt = now

	if err := ticket.Advance(domain.TicketPaid); err != nil {
		return nil, err
	}
	ticket.Amount = amount
	ticket.Payment = payment
	ticket.ExitTime = null.TimeFrom(now)
	return copyTicket(ticket), nil
}
