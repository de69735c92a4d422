package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/Domenick1991/airlineapi/internal/repository"
	"github.com/Domenick1991/airlineapi/internal/service/persons"
	"github.com/gin-gonic/gin"
)

type PersonHandler struct {
	service persons.PersonUseCase
}

type personResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
}

func NewPersonHandler(service persons.PersonUseCase) *PersonHandler {
	return &PersonHandler{service: service}
}

func (h *PersonHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

// Filter query params turn the listing into a search.
func (h *PersonHandler) list(c *gin.Context) {
	if hasPersonFilters(c) {
		h.search(c)
		return
	}
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPersonResponses(list))
}

func (h *PersonHandler) search(c *gin.Context) {
	limit, offset := parsePaging(c)
	criteria := repository.PersonSearchCriteria{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
		Limit:     limit,
		Offset:    offset,
	}
	list, err := h.service.Search(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPersonResponses(list))
}

func hasPersonFilters(c *gin.Context) bool {
	return c.Query("first_name") != "" ||
		c.Query("last_name") != "" ||
		c.Query("email") != ""
}

func (h *PersonHandler) get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	person, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPersonResponse(person))
}

func (h *PersonHandler) create(c *gin.Context) {
	var input persons.CreatePersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	person, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPersonResponse(person))
}

func (h *PersonHandler) update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var input persons.CreatePersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	person, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPersonResponse(person))
}

func (h *PersonHandler) delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toPersonResponse(p *domain.Person) personResponse {
	return personResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		DateOfBirth: p.DateOfBirth.Format(time.DateOnly),
	}
}

func toPersonResponses(list []domain.Person) []personResponse {
	out := make([]personResponse, 0, len(list))
	for i := range list {
		out = append(out, toPersonResponse(&list[i]))
	}
	return out
}
