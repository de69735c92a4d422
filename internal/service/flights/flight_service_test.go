package flights

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/Domenick1991/airlineapi/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, criteria repository.FlightSearchCriteria) ([]domain.Flight, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id, version int64) error {
	args := m.Called(ctx, id, version)
	return args.Error(0)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) FindByPersonAndFlight(ctx context.Context, personID, flightID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, personID, flightID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) SeatNumbersByFlight(ctx context.Context, flightID int64) ([]int64, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockTicketRepository) ListByFlight(ctx context.Context, flightID int64, limit, offset int) ([]domain.Ticket, error) {
	args := m.Called(ctx, flightID, limit, offset)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByPerson(ctx context.Context, personID int64, limit, offset int) ([]domain.Ticket, error) {
	args := m.Called(ctx, personID, limit, offset)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) UpdatePerson(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id, version int64) error {
	args := m.Called(ctx, id, version)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func validInput() CreateFlightInput {
	return CreateFlightInput{
		FlightNumber:   "LO123",
		Origin:         "WAW",
		Destination:    "JFK",
		DepartureTime:  time.Now().Add(24 * time.Hour),
		ArrivalTime:    time.Now().Add(33 * time.Hour),
		AvailableSeats: 180,
	}
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockFlights, &MockTicketRepository{}, mockCache)

	ctx := context.Background()
	cached := []domain.Flight{{ID: 1, FlightNumber: "LO123"}}
	mockCache.On("GetFlights", ctx).Return(cached, nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, list)
	mockFlights.AssertNotCalled(t, "List")
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockFlights, &MockTicketRepository{}, mockCache)

	ctx := context.Background()
	stored := []domain.Flight{{ID: 1}, {ID: 2}}
	mockCache.On("GetFlights", ctx).Return([]domain.Flight(nil), nil).Once()
	mockFlights.On("List", ctx).Return(stored, nil).Once()
	mockCache.On("SetFlights", ctx, stored).Return(nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stored, list)
	mockCache.AssertExpectations(t)
}

func TestFlightService_Create_Validation(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, &MockTicketRepository{}, nil)
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*CreateFlightInput)
	}{
		{name: "missing flight number", mutate: func(in *CreateFlightInput) { in.FlightNumber = "" }},
		{name: "zero seats", mutate: func(in *CreateFlightInput) { in.AvailableSeats = 0 }},
		{name: "negative seats", mutate: func(in *CreateFlightInput) { in.AvailableSeats = -10 }},
		{name: "arrival before departure", mutate: func(in *CreateFlightInput) { in.ArrivalTime = in.DepartureTime.Add(-time.Hour) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			flight, err := service.Create(ctx, input)
			assert.Nil(t, flight)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestFlightService_Update_RejectedWithTickets(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	mockTickets := &MockTicketRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockFlights, mockTickets, mockCache)

	ctx := context.Background()
	mockFlights.On("GetForUpdate", ctx, int64(1)).Return(&domain.Flight{ID: 1, AvailableSeats: 100}, nil).Once()
	mockTickets.On("CountByFlight", ctx, int64(1)).Return(3, nil).Once()

	flight, err := service.Update(ctx, 1, validInput())

	assert.Nil(t, flight)
	assert.ErrorIs(t, err, domain.ErrHasTickets)
	mockFlights.AssertNotCalled(t, "Update")
	mockCache.AssertNotCalled(t, "InvalidateFlights")
}

func TestFlightService_Delete_Success(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	mockTickets := &MockTicketRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockFlights, mockTickets, mockCache)

	ctx := context.Background()
	mockFlights.On("GetForUpdate", ctx, int64(1)).Return(&domain.Flight{ID: 1, Version: 4}, nil).Once()
	mockTickets.On("CountByFlight", ctx, int64(1)).Return(0, nil).Once()
	mockFlights.On("Delete", ctx, int64(1), int64(4)).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	err := service.Delete(ctx, 1)

	assert.NoError(t, err)
	mockFlights.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_Delete_RejectedWithTickets(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	mockTickets := &MockTicketRepository{}
	service := NewFlightService(mockFlights, mockTickets, nil)

	ctx := context.Background()
	mockFlights.On("GetForUpdate", ctx, int64(1)).Return(&domain.Flight{ID: 1}, nil).Once()
	mockTickets.On("CountByFlight", ctx, int64(1)).Return(1, nil).Once()

	err := service.Delete(ctx, 1)

	assert.ErrorIs(t, err, domain.ErrHasTickets)
	mockFlights.AssertNotCalled(t, "Delete")
}

func TestFlightService_UpdateTimes_InvalidRange(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, &MockTicketRepository{}, nil)
	ctx := context.Background()

	now := time.Now()
	flight, err := service.UpdateTimes(ctx, 1, UpdateFlightTimesInput{DepartureTime: now, ArrivalTime: now.Add(-time.Hour)})

	assert.Nil(t, flight)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFlightService_UpdateTimes_ConcurrentModification(t *testing.T) {
	mockFlights := &MockFlightRepository{}
	service := NewFlightService(mockFlights, &MockTicketRepository{}, nil)

	ctx := context.Background()
	now := time.Now()
	mockFlights.On("GetByID", ctx, int64(1)).Return(&domain.Flight{ID: 1, Version: 2}, nil).Once()
	mockFlights.On("Update", ctx, mock.AnythingOfType("*domain.Flight")).
		Return(fmt.Errorf("flight 1: %w", domain.ErrConcurrentModification)).Once()

	flight, err := service.UpdateTimes(ctx, 1, UpdateFlightTimesInput{DepartureTime: now.Add(time.Hour), ArrivalTime: now.Add(2 * time.Hour)})

	assert.Nil(t, flight)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}
