package repository

import (
	"context"
	"errors"

	"parking_facility/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

// TicketArchiveRepository stores terminally-settled tickets. The in-memory
// ledger stays authoritative; archival is best effort and never blocks the
// engine.
type TicketArchiveRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket) error
	FindByTicketNo(ctx context.Context, ticketNo int) (*domain.Ticket, error)
	FindByVehicle(ctx context.Context, license string) ([]domain.Ticket, error)
}
