package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketRepository is the ticket ledger: the only durable record of who
// holds which seat on which flight.
type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	CountByFlight(ctx context.Context, flightID int64) (int, error)
	FindByPersonAndFlight(ctx context.Context, personID, flightID int64) ([]domain.Ticket, error)
	SeatNumbersByFlight(ctx context.Context, flightID int64) ([]int64, error)
	ListByFlight(ctx context.Context, flightID int64, limit, offset int) ([]domain.Ticket, error)
	ListByPerson(ctx context.Context, personID int64, limit, offset int) ([]domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdatePerson(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id, version int64) error
}

type PGTicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, seat_number, price_cents, version, flight_id, person_id, created_at, updated_at`

func (r *PGTicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
		}
		return nil, mapPgError(err)
	}
	return t, nil
}

// CountByFlight counts issued tickets without loading rows; capacity checks
// stay cheap on large flights.
func (r *PGTicketRepository) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	var count int
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE flight_id=$1`, flightID).Scan(&count); err != nil {
		return 0, mapPgError(err)
	}
	return count, nil
}

// FindByPersonAndFlight returns an empty slice when the person holds no
// ticket on the flight.
func (r *PGTicketRepository) FindByPersonAndFlight(ctx context.Context, personID, flightID int64) ([]domain.Ticket, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE person_id=$1 AND flight_id=$2`, personID, flightID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *PGTicketRepository) SeatNumbersByFlight(ctx context.Context, flightID int64) ([]int64, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT seat_number FROM tickets WHERE flight_id=$1 ORDER BY seat_number`, flightID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	seats := make([]int64, 0)
	for rows.Next() {
		var seat int64
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *PGTicketRepository) ListByFlight(ctx context.Context, flightID int64, limit, offset int) ([]domain.Ticket, error) {
	return r.list(ctx, `flight_id`, flightID, limit, offset)
}

func (r *PGTicketRepository) ListByPerson(ctx context.Context, personID int64, limit, offset int) ([]domain.Ticket, error) {
	return r.list(ctx, `person_id`, personID, limit, offset)
}

func (r *PGTicketRepository) list(ctx context.Context, column string, id int64, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE `+column+`=$1 ORDER BY id LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *PGTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	err := db(ctx, r.pool).QueryRow(ctx, `INSERT INTO tickets (ticket_number, seat_number, price_cents, version, flight_id, person_id)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id, version, created_at, updated_at`,
		ticket.TicketNumber, ticket.SeatNumber, ticket.PriceCents, ticket.FlightID, ticket.PersonID).
		Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// UpdatePerson moves the ticket to ticket.PersonID. The flight, seat and
// price columns are deliberately not part of the statement.
func (r *PGTicketRepository) UpdatePerson(ctx context.Context, ticket *domain.Ticket) error {
	res, err := db(ctx, r.pool).Exec(ctx, `UPDATE tickets
		SET person_id=$1, version=version+1, updated_at=now()
		WHERE id=$2 AND version=$3`,
		ticket.PersonID, ticket.ID, ticket.Version)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, ticket.ID)
	}
	ticket.Version++
	return nil
}

func (r *PGTicketRepository) Delete(ctx context.Context, id, version int64) error {
	res, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id=$1 AND version=$2`, id, version)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *PGTicketRepository) staleOrMissing(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("ticket %d: %w", id, domain.ErrConcurrentModification)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.TicketNumber, &t.SeatNumber, &t.PriceCents, &t.Version, &t.FlightID, &t.PersonID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

var _ TicketRepository = (*PGTicketRepository)(nil)
