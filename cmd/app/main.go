package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airlineapi/config"
	"github.com/Domenick1991/airlineapi/internal/bootstrap"
	"github.com/Domenick1991/airlineapi/internal/cache"
	"github.com/Domenick1991/airlineapi/internal/kafka"
	"github.com/Domenick1991/airlineapi/internal/repository"
	"github.com/Domenick1991/airlineapi/internal/service/allocation"
	"github.com/Domenick1991/airlineapi/internal/service/flights"
	"github.com/Domenick1991/airlineapi/internal/service/persons"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Cache.FlightsTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	personRepo := repository.NewPersonRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	flightService := flights.NewFlightService(flightRepo, ticketRepo, redisCache)
	personService := persons.NewPersonService(personRepo, ticketRepo)
	allocationService := allocation.NewAllocationService(
		ticketRepo,
		flightRepo,
		personRepo,
		producer,
		cfg.Kafka.TicketEventsTopic,
		allocation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, personService, allocationService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
