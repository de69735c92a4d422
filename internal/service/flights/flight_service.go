package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/Domenick1991/airlineapi/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, criteria repository.FlightSearchCriteria) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input CreateFlightInput) (*domain.Flight, error)
	UpdateTimes(ctx context.Context, id int64, input UpdateFlightTimesInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	flights repository.FlightRepository
	tickets repository.TicketRepository
	cache   FlightCache
}

type CreateFlightInput struct {
	FlightNumber   string    `json:"flight_number"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	AvailableSeats int       `json:"available_seats"`
}

type UpdateFlightTimesInput struct {
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

func NewFlightService(flights repository.FlightRepository, tickets repository.TicketRepository, cache FlightCache) *FlightService {
	return &FlightService{flights: flights, tickets: tickets, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) Search(ctx context.Context, criteria repository.FlightSearchCriteria) ([]domain.Flight, error) {
	return s.flights.Search(ctx, criteria)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if err := validateFlightInput(input); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		Origin:         input.Origin,
		Destination:    input.Destination,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		AvailableSeats: input.AvailableSeats,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

// Update replaces the flight definition. Rejected once tickets have been
// sold: changing capacity or route under issued tickets would break the
// allocation invariants.
func (s *FlightService) Update(ctx context.Context, id int64, input CreateFlightInput) (*domain.Flight, error) {
	if err := validateFlightInput(input); err != nil {
		return nil, err
	}

	var flight *domain.Flight
	err := s.flights.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.flights.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		issued, err := s.tickets.CountByFlight(txCtx, id)
		if err != nil {
			return err
		}
		if issued > 0 {
			return fmt.Errorf("flight %d: %w", id, domain.ErrHasTickets)
		}

		current.FlightNumber = input.FlightNumber
		current.Origin = input.Origin
		current.Destination = input.Destination
		current.DepartureTime = input.DepartureTime
		current.ArrivalTime = input.ArrivalTime
		current.AvailableSeats = input.AvailableSeats
		if err := s.flights.Update(txCtx, current); err != nil {
			return err
		}
		flight = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

// UpdateTimes reschedules the flight without touching capacity; allowed even
// with sold tickets.
func (s *FlightService) UpdateTimes(ctx context.Context, id int64, input UpdateFlightTimesInput) (*domain.Flight, error) {
	if !input.DepartureTime.Before(input.ArrivalTime) {
		return nil, fmt.Errorf("departure must be before arrival: %w", domain.ErrInvalidArgument)
	}

	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flight.DepartureTime = input.DepartureTime
	flight.ArrivalTime = input.ArrivalTime
	if err := s.flights.Update(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

// Delete refuses to cascade: a flight with issued tickets stays until its
// tickets are released.
func (s *FlightService) Delete(ctx context.Context, id int64) error {
	err := s.flights.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.flights.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		issued, err := s.tickets.CountByFlight(txCtx, id)
		if err != nil {
			return err
		}
		if issued > 0 {
			return fmt.Errorf("flight %d: %w", id, domain.ErrHasTickets)
		}

		return s.flights.Delete(txCtx, current.ID, current.Version)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
}

func validateFlightInput(input CreateFlightInput) error {
	if input.FlightNumber == "" {
		return fmt.Errorf("flight number is required: %w", domain.ErrInvalidArgument)
	}
	if input.AvailableSeats <= 0 {
		return fmt.Errorf("available seats must be positive: %w", domain.ErrInvalidArgument)
	}
	if !input.DepartureTime.Before(input.ArrivalTime) {
		return fmt.Errorf("departure must be before arrival: %w", domain.ErrInvalidArgument)
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
