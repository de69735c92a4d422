package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airlineapi/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	fmt.Printf("send email to person %d about %s for flight %d seat %d\n", event.PersonID, event.Type, event.FlightID, event.SeatNumber)
	return nil
}
