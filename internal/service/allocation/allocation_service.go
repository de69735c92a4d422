package allocation

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/Domenick1991/airlineapi/internal/kafka"
	"github.com/Domenick1991/airlineapi/internal/repository"
	"github.com/google/uuid"
)

// AllocationUseCase is the only entry point that mutates the ticket ledger.
// After every successful call two invariants hold: a flight never carries
// more tickets than it has seats, and a person holds at most one ticket per
// flight.
type AllocationUseCase interface {
	IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error)
	ReassignTicket(ctx context.Context, ticketID, newPersonID int64) (*domain.Ticket, error)
	ReleaseTicket(ctx context.Context, ticketID int64) error
	FreeSeats(ctx context.Context, flightID int64) ([]int64, error)
	GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	TicketsByFlight(ctx context.Context, flightID int64, limit, offset int) ([]domain.Ticket, error)
	TicketsByPerson(ctx context.Context, personID int64, limit, offset int) ([]domain.Ticket, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type AllocationService struct {
	tickets            repository.TicketRepository
	flights            repository.FlightRepository
	persons            repository.PersonRepository
	producer           Producer
	ticketTopic        string
	notificationsTopic string
}

type IssueTicketInput struct {
	FlightID   int64 `json:"flight_id"`
	PersonID   int64 `json:"person_id"`
	SeatNumber int64 `json:"seat_number"`
	PriceCents int64 `json:"price_cents"`
}

type AllocationServiceOption func(*AllocationService)

func WithNotificationsTopic(topic string) AllocationServiceOption {
	return func(s *AllocationService) {
		s.notificationsTopic = topic
	}
}

func NewAllocationService(
	tickets repository.TicketRepository,
	flights repository.FlightRepository,
	persons repository.PersonRepository,
	producer Producer,
	ticketTopic string,
	opts ...AllocationServiceOption,
) *AllocationService {
	service := &AllocationService{
		tickets:     tickets,
		flights:     flights,
		persons:     persons,
		producer:    producer,
		ticketTopic: ticketTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// IssueTicket creates a ticket linking a person to a flight. The flight row
// is locked before the capacity check and the person row before the
// duplicate check, so two racing requests cannot both observe spare
// capacity or both pass the uniqueness check. Everything happens in one
// transaction; locks are released together at commit or rollback.
func (s *AllocationService) IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error) {
	if input.SeatNumber <= 0 {
		return nil, fmt.Errorf("seat number must be positive: %w", domain.ErrInvalidArgument)
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("price must be non-negative: %w", domain.ErrInvalidArgument)
	}

	var ticket *domain.Ticket
	err := s.tickets.WithTx(ctx, func(txCtx context.Context) error {
		flight, err := s.flights.GetForUpdate(txCtx, input.FlightID)
		if err != nil {
			return err
		}

		issued, err := s.tickets.CountByFlight(txCtx, flight.ID)
		if err != nil {
			return err
		}
		if issued >= flight.AvailableSeats {
			return fmt.Errorf("flight %d: %w", flight.ID, domain.ErrCapacityExceeded)
		}

		if _, err := s.persons.GetForUpdate(txCtx, input.PersonID); err != nil {
			return err
		}

		existing, err := s.tickets.FindByPersonAndFlight(txCtx, input.PersonID, flight.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("person %d on flight %d: %w", input.PersonID, flight.ID, domain.ErrDuplicateBooking)
		}

		ticket = &domain.Ticket{
			TicketNumber: uuid.NewString(),
			SeatNumber:   input.SeatNumber,
			PriceCents:   input.PriceCents,
			FlightID:     flight.ID,
			PersonID:     input.PersonID,
		}
		return s.tickets.Create(txCtx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "ticket_issued", ticket)
	return ticket, nil
}

// ReassignTicket moves an issued ticket to another person. The flight
// reference and seat are untouched. Missing ticket fails before the person
// store is consulted.
func (s *AllocationService) ReassignTicket(ctx context.Context, ticketID, newPersonID int64) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tickets.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}

		if _, err := s.persons.GetForUpdate(txCtx, newPersonID); err != nil {
			return err
		}

		existing, err := s.tickets.FindByPersonAndFlight(txCtx, newPersonID, current.FlightID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("person %d on flight %d: %w", newPersonID, current.FlightID, domain.ErrDuplicateBooking)
		}

		current.PersonID = newPersonID
		if err := s.tickets.UpdatePerson(txCtx, current); err != nil {
			return err
		}
		ticket = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "ticket_reassigned", ticket)
	return ticket, nil
}

// ReleaseTicket removes the ticket, freeing one capacity unit. The delete is
// version checked, so a concurrently reassigned ticket is not silently
// removed. A released ticket id is never reissued.
func (s *AllocationService) ReleaseTicket(ctx context.Context, ticketID int64) error {
	var released *domain.Ticket
	err := s.tickets.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}
		if err := s.tickets.Delete(txCtx, current.ID, current.Version); err != nil {
			return err
		}
		released = current
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, "ticket_released", released)
	return nil
}

// FreeSeats returns seat numbers 1..availableSeats not present on any
// current ticket of the flight, ascending. The flight row is locked so the
// answer is consistent with in-flight issuance.
func (s *AllocationService) FreeSeats(ctx context.Context, flightID int64) ([]int64, error) {
	var free []int64
	err := s.tickets.WithTx(ctx, func(txCtx context.Context) error {
		flight, err := s.flights.GetForUpdate(txCtx, flightID)
		if err != nil {
			return err
		}

		taken, err := s.tickets.SeatNumbersByFlight(txCtx, flight.ID)
		if err != nil {
			return err
		}

		occupied := make(map[int64]struct{}, len(taken))
		for _, seat := range taken {
			occupied[seat] = struct{}{}
		}

		free = make([]int64, 0, flight.AvailableSeats)
		for seat := int64(1); seat <= int64(flight.AvailableSeats); seat++ {
			if _, ok := occupied[seat]; !ok {
				free = append(free, seat)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return free, nil
}

// Plain reads below take no locks and may observe slightly stale data; they
// are never used to decide capacity or uniqueness.

func (s *AllocationService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, ticketID)
}

func (s *AllocationService) TicketsByFlight(ctx context.Context, flightID int64, limit, offset int) ([]domain.Ticket, error) {
	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.tickets.ListByFlight(ctx, flightID, limit, offset)
}

func (s *AllocationService) TicketsByPerson(ctx context.Context, personID int64, limit, offset int) ([]domain.Ticket, error) {
	if _, err := s.persons.GetByID(ctx, personID); err != nil {
		return nil, err
	}
	return s.tickets.ListByPerson(ctx, personID, limit, offset)
}

// publish emits a ticket lifecycle event after the transaction has
// committed. Delivery is best effort; a failed publish never fails the
// operation itself.
func (s *AllocationService) publish(ctx context.Context, eventType string, ticket *domain.Ticket) {
	if s.producer == nil || s.ticketTopic == "" || ticket == nil {
		return
	}
	event := kafka.TicketEvent{
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		FlightID:     ticket.FlightID,
		PersonID:     ticket.PersonID,
		SeatNumber:   ticket.SeatNumber,
		PriceCents:   ticket.PriceCents,
	}
	if err := s.producer.Publish(ctx, s.ticketTopic, ticket.TicketNumber, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for ticket %s: %v", eventType, ticket.TicketNumber, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, ticket.TicketNumber, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for ticket %s: %v", eventType, ticket.TicketNumber, err)
		}
	}
}

var _ AllocationUseCase = (*AllocationService)(nil)
