package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/airlineapi/api"
	"github.com/Domenick1991/airlineapi/config"
	"github.com/Domenick1991/airlineapi/internal/service/allocation"
	"github.com/Domenick1991/airlineapi/internal/service/flights"
	"github.com/Domenick1991/airlineapi/internal/service/persons"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	flightSvc flights.FlightUseCase,
	personSvc persons.PersonUseCase,
	allocationSvc allocation.AllocationUseCase,
) error {
	engine := newEngine(flightSvc, personSvc, allocationSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(
	flightSvc flights.FlightUseCase,
	personSvc persons.PersonUseCase,
	allocationSvc allocation.AllocationUseCase,
) *gin.Engine {
	engine := gin.Default()

	v1 := engine.Group("/api/v1")
	flightsGroup := v1.Group("/flights")
	personsGroup := v1.Group("/persons")
	ticketsGroup := v1.Group("/tickets")

	api.NewFlightHandler(flightSvc).Register(flightsGroup)
	api.NewPersonHandler(personSvc).Register(personsGroup)
	api.NewTicketHandler(allocationSvc).Register(flightsGroup, personsGroup, ticketsGroup)

	return engine
}
