package persons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/Domenick1991/airlineapi/internal/repository"
)

type PersonUseCase interface {
	List(ctx context.Context) ([]domain.Person, error)
	Search(ctx context.Context, criteria repository.PersonSearchCriteria) ([]domain.Person, error)
	GetByID(ctx context.Context, id int64) (*domain.Person, error)
	Create(ctx context.Context, input CreatePersonInput) (*domain.Person, error)
	Update(ctx context.Context, id int64, input CreatePersonInput) (*domain.Person, error)
	Delete(ctx context.Context, id int64) error
}

type PersonService struct {
	persons repository.PersonRepository
	tickets repository.TicketRepository
}

type CreatePersonInput struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

func NewPersonService(persons repository.PersonRepository, tickets repository.TicketRepository) *PersonService {
	return &PersonService{persons: persons, tickets: tickets}
}

func (s *PersonService) List(ctx context.Context) ([]domain.Person, error) {
	return s.persons.List(ctx)
}

func (s *PersonService) Search(ctx context.Context, criteria repository.PersonSearchCriteria) ([]domain.Person, error) {
	return s.persons.Search(ctx, criteria)
}

func (s *PersonService) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	return s.persons.GetByID(ctx, id)
}

func (s *PersonService) Create(ctx context.Context, input CreatePersonInput) (*domain.Person, error) {
	if err := validatePersonInput(input); err != nil {
		return nil, err
	}

	person := &domain.Person{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		DateOfBirth: input.DateOfBirth,
	}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *PersonService) Update(ctx context.Context, id int64, input CreatePersonInput) (*domain.Person, error) {
	if err := validatePersonInput(input); err != nil {
		return nil, err
	}

	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	person.FirstName = input.FirstName
	person.LastName = input.LastName
	person.Email = input.Email
	person.PhoneNumber = input.PhoneNumber
	person.DateOfBirth = input.DateOfBirth
	if err := s.persons.Update(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// Delete refuses to cascade: a person still holding tickets cannot be
// removed until the tickets are released.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	return s.persons.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.persons.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		held, err := s.tickets.ListByPerson(txCtx, id, 1, 0)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return fmt.Errorf("person %d: %w", id, domain.ErrHasTickets)
		}

		return s.persons.Delete(txCtx, current.ID, current.Version)
	})
}

func validatePersonInput(input CreatePersonInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return fmt.Errorf("first name is required: %w", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.LastName) == "" {
		return fmt.Errorf("last name is required: %w", domain.ErrInvalidArgument)
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		return fmt.Errorf("invalid email: %w", domain.ErrInvalidArgument)
	}
	return nil
}

var _ PersonUseCase = (*PersonService)(nil)
