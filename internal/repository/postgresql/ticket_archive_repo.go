package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parking_facility/internal/domain"
	"parking_facility/internal/repository"
)

type pgTicketArchiveRepository struct {
	db *sql.DB
}

func NewPgTicketArchiveRepository(db *sql.DB) repository.TicketArchiveRepository {
	return &pgTicketArchiveRepository{db: db}
}

// EnsureSchema creates the archive table when it is missing. The archive is a
// write-mostly history table, not the engine's source of truth.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS ticket_archive (
	            ticket_no        INTEGER PRIMARY KEY,
	            vehicle_license  TEXT NOT NULL,
	            vehicle_class    TEXT NOT NULL,
	            spot_id          INTEGER NOT NULL,
	            entrance_id      INTEGER NOT NULL,
	            exit_id          INTEGER,
	            entry_time       TIMESTAMPTZ NOT NULL,
	            exit_time        TIMESTAMPTZ,
	            amount           DOUBLE PRECISION NOT NULL,
	            status           TEXT NOT NULL,
	            payment          JSONB,
	            archived_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	          )`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure ticket_archive schema: %w", err)
	}
	return nil
}

func (r *pgTicketArchiveRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	var paymentJSON sql.NullString
	if ticket.Payment != nil {
		raw, err := json.Marshal(ticket.Payment)
		if err != nil {
			return fmt.Errorf("TicketArchiveRepository.Save: marshal payment: %w", err)
		}
		paymentJSON = sql.NullString{String: string(raw), Valid: true}
	}
	var exitID sql.NullInt64
	if ticket.ExitID.Valid {
		exitID = sql.NullInt64{Int64: ticket.ExitID.Int64, Valid: true}
	}
	var exitTime sql.NullTime
	if ticket.ExitTime.Valid {
		exitTime = sql.NullTime{Time: ticket.ExitTime.Time, Valid: true}
	}

	query := `INSERT INTO ticket_archive
	            (ticket_no, vehicle_license, vehicle_class, spot_id, entrance_id, exit_id,
	             entry_time, exit_time, amount, status, payment)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (ticket_no) DO UPDATE SET
	            exit_id = EXCLUDED.exit_id, exit_time = EXCLUDED.exit_time,
	            amount = EXCLUDED.amount, status = EXCLUDED.status, payment = EXCLUDED.payment`

	_, err := r.db.ExecContext(ctx, query,
		ticket.TicketNo, ticket.VehicleLicense, string(ticket.VehicleClass), ticket.SpotID,
		ticket.EntranceID, exitID, ticket.EntryTime, exitTime, ticket.Amount,
		string(ticket.Status), paymentJSON,
	)
	if err != nil {
		return fmt.Errorf("TicketArchiveRepository.Save: %w", err)
	}
	return nil
}

func (r *pgTicketArchiveRepository) FindByTicketNo(ctx context.Context, ticketNo int) (*domain.Ticket, error) {
	query := `SELECT ticket_no, vehicle_license, vehicle_class, spot_id, entrance_id, exit_id,
	                 entry_time, exit_time, amount, status, payment
	          FROM ticket_archive WHERE ticket_no = $1`
	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TicketArchiveRepository.FindByTicketNo: %w", err)
	}
	return ticket, nil
}

func (r *pgTicketArchiveRepository) FindByVehicle(ctx context.Context, license string) ([]domain.Ticket, error) {
	query := `SELECT ticket_no, vehicle_license, vehicle_class, spot_id, entrance_id, exit_id,
	                 entry_time, exit_time, amount, status, payment
	          FROM ticket_archive WHERE vehicle_license = $1 ORDER BY entry_time`
	rows, err := r.db.QueryContext(ctx, query, license)
	if err != nil {
		return nil, fmt.Errorf("TicketArchiveRepository.FindByVehicle: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("TicketArchiveRepository.FindByVehicle: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TicketArchiveRepository.FindByVehicle: %w", err)
	}
	return tickets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket      domain.Ticket
		class       string
		status      string
		exitID      sql.NullInt64
		exitTime    sql.NullTime
		paymentJSON sql.NullString
	)
	err := row.Scan(&ticket.TicketNo, &ticket.VehicleLicense, &class, &ticket.SpotID,
		&ticket.EntranceID, &exitID, &ticket.EntryTime, &exitTime, &ticket.Amount,
		&status, &paymentJSON)
	if err != nil {
		return nil, err
	}
	ticket.VehicleClass = domain.VehicleClass(class)
	ticket.Status = domain.TicketStatus(status)
	ticket.EntryTime = ticket.EntryTime.In(time.UTC)
	if exitID.Valid {
		ticket.ExitID.SetValid(exitID.Int64)
	}
	if exitTime.Valid {
		ticket.ExitTime.SetValid(exitTime.Time.In(time.UTC))
	}
	if paymentJSON.Valid {
		var payment domain.Payment
		if err := json.Unmarshal([]byte(paymentJSON.String), &payment); err != nil {
			return nil, fmt.Errorf("unmarshal payment: %w", err)
		}
		ticket.Payment = &payment
	}
	return &ticket, nil
}
