package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightSearchCriteria struct {
	FlightNumber   string
	Origin         string
	Destination    string
	DepartureAfter *time.Time
	Limit          int
	Offset         int
}

type FlightRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, criteria FlightSearchCriteria) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id, version int64) error
}

type PGFlightRepository struct {
	pool *pgxpool.Pool
}

func NewFlightRepository(pool *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{pool: pool}
}

const flightColumns = `id, flight_number, origin, destination, departure_time, arrival_time, available_seats, version, created_at, updated_at`

func (r *PGFlightRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) Search(ctx context.Context, criteria FlightSearchCriteria) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := make([]any, 0, 6)
	if criteria.FlightNumber != "" {
		args = append(args, criteria.FlightNumber)
		query += fmt.Sprintf(" AND flight_number=$%d", len(args))
	}
	if criteria.Origin != "" {
		args = append(args, criteria.Origin)
		query += fmt.Sprintf(" AND origin=$%d", len(args))
	}
	if criteria.Destination != "" {
		args = append(args, criteria.Destination)
		query += fmt.Sprintf(" AND destination=$%d", len(args))
	}
	if criteria.DepartureAfter != nil {
		args = append(args, *criteria.DepartureAfter)
		query += fmt.Sprintf(" AND departure_time >= $%d", len(args))
	}
	query += " ORDER BY departure_time"
	if criteria.Limit > 0 {
		args = append(args, criteria.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if criteria.Offset > 0 {
		args = append(args, criteria.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
}

// GetForUpdate locks the flight row for the rest of the surrounding
// transaction, serializing capacity checks against concurrent issuance.
func (r *PGFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGFlightRepository) get(ctx context.Context, query string, id int64) (*domain.Flight, error) {
	row := db(ctx, r.pool).QueryRow(ctx, query, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.AvailableSeats, &f.Version, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
		}
		return nil, mapPgError(err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := db(ctx, r.pool).QueryRow(ctx, `INSERT INTO flights (flight_number, origin, destination, departure_time, arrival_time, available_seats, version)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING id, version, created_at, updated_at`,
		flight.FlightNumber, flight.Origin, flight.Destination, flight.DepartureTime, flight.ArrivalTime, flight.AvailableSeats).
		Scan(&flight.ID, &flight.Version, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// Update writes the flight back, expecting flight.Version to match the row.
// A mismatch caused by a concurrent writer surfaces as
// domain.ErrConcurrentModification.
func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	res, err := db(ctx, r.pool).Exec(ctx, `UPDATE flights
		SET flight_number=$1, origin=$2, destination=$3, departure_time=$4, arrival_time=$5, available_seats=$6, version=version+1, updated_at=now()
		WHERE id=$7 AND version=$8`,
		flight.FlightNumber, flight.Origin, flight.Destination, flight.DepartureTime, flight.ArrivalTime, flight.AvailableSeats, flight.ID, flight.Version)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, flight.ID)
	}
	flight.Version++
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id, version int64) error {
	res, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM flights WHERE id=$1 AND version=$2`, id, version)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *PGFlightRepository) staleOrMissing(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("flight %d: %w", id, domain.ErrConcurrentModification)
}

func scanFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.AvailableSeats, &f.Version, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
