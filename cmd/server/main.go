// server is the booking API behind the seat map: seat snapshots, booking
// transactions, ticket lookup and the websocket push channel.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/config"
	"github.com/iliyamo/theater-seat-booking/internal/database"
	"github.com/iliyamo/theater-seat-booking/internal/handler"
	"github.com/iliyamo/theater-seat-booking/internal/hub"
	"github.com/iliyamo/theater-seat-booking/internal/middleware"
	"github.com/iliyamo/theater-seat-booking/internal/queue"
	"github.com/iliyamo/theater-seat-booking/internal/repository"
	"github.com/iliyamo/theater-seat-booking/internal/router"
	"github.com/iliyamo/theater-seat-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.SeedOnStart {
		layout, err := catalog.LoadLayout(cfg.LayoutPath)
		if err != nil {
			log.Fatalf("layout: %v", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("database: %v", err)
		}
		seeded, err := database.Seed(ctx, db, layout, database.DefaultEvent())
		if err != nil {
			log.Fatalf("database: seed: %v", err)
		}
		if seeded {
			log.Printf("database: seeded default event with %d seats", layout.Total())
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	events := repository.NewEventRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db, seats)
	push := hub.New(log.Default())
	defer push.Close()

	bookingHandler := &handler.BookingHandler{
		Events:       events,
		Bookings:     bookings,
		Hub:          push,
		TicketSecret: cfg.JWTSecret,
		TicketTTL:    cfg.TicketTTL,
		Logger:       log.Default(),
	}
	if cfg.AMQPURL != "" {
		bookingHandler.Publisher = service.NewPublisher(cfg.AMQPURL)
		consumer := queue.NewConsumer(cfg.AMQPURL)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: stopped: %v", err)
			}
		}()
	} else {
		log.Printf("rabbitmq: RABBITMQ_URL not set, booking events disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(events, seats),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBooking(e, bookingHandler,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb), cfg.JWTSecret)
	router.RegisterPush(e, &handler.PushHandler{Hub: push, Events: events, Seats: seats})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
