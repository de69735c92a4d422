package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/Domenick1991/airlineapi/internal/service/allocation"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service allocation.AllocationUseCase
}

type issueTicketRequest struct {
	PersonID   int64 `json:"person_id"`
	SeatNumber int64 `json:"seat_number"`
	PriceCents int64 `json:"price_cents"`
}

type reassignTicketRequest struct {
	PersonID int64 `json:"person_id"`
}

type ticketResponse struct {
	ID           int64  `json:"id"`
	TicketNumber string `json:"ticket_number"`
	SeatNumber   int64  `json:"seat_number"`
	PriceCents   int64  `json:"price_cents"`
	FlightID     int64  `json:"flight_id"`
	PersonID     int64  `json:"person_id"`
	CreatedAt    string `json:"created_at"`
}

func NewTicketHandler(service allocation.AllocationUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

// Ticket creation is flight scoped: a ticket always enters through its
// flight's URL.
func (h *TicketHandler) Register(flights, persons, tickets *gin.RouterGroup) {
	flights.GET("/:id/free-seats", h.freeSeats)
	flights.GET("/:id/tickets", h.listByFlight)
	flights.POST("/:id/tickets", h.issue)
	flights.PUT("/:id/tickets/:ticketId", h.reassign)
	persons.GET("/:id/tickets", h.listByPerson)
	tickets.GET("/:id", h.get)
	tickets.DELETE("/:id", h.release)
}

func (h *TicketHandler) issue(c *gin.Context) {
	flightID, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req issueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.IssueTicket(c.Request.Context(), allocation.IssueTicketInput{
		FlightID:   flightID,
		PersonID:   req.PersonID,
		SeatNumber: req.SeatNumber,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTicketResponse(ticket))
}

func (h *TicketHandler) reassign(c *gin.Context) {
	flightID, err := parseID(c, "id")
	if err != nil {
		return
	}
	ticketID, err := parseID(c, "ticketId")
	if err != nil {
		return
	}
	var req reassignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The flight reference of a ticket is immutable, so the path check
	// cannot race with the reassignment below.
	current, err := h.service.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		writeError(c, err)
		return
	}
	if current.FlightID != flightID {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket does not belong to this flight"})
		return
	}

	ticket, err := h.service.ReassignTicket(c.Request.Context(), ticketID, req.PersonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) release(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	if err := h.service.ReleaseTicket(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TicketHandler) get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	ticket, err := h.service.GetTicket(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) freeSeats(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	seats, err := h.service.FreeSeats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"free_seats": seats})
}

func (h *TicketHandler) listByFlight(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	limit, offset := parsePaging(c)
	tickets, err := h.service.TicketsByFlight(c.Request.Context(), id, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponses(tickets))
}

func (h *TicketHandler) listByPerson(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	limit, offset := parsePaging(c)
	tickets, err := h.service.TicketsByPerson(c.Request.Context(), id, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponses(tickets))
}

func parseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, err
	}
	return id, nil
}

func parsePaging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		SeatNumber:   t.SeatNumber,
		PriceCents:   t.PriceCents,
		FlightID:     t.FlightID,
		PersonID:     t.PersonID,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
}

func toTicketResponses(tickets []domain.Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, toTicketResponse(&tickets[i]))
	}
	return out
}
