package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/captcha"
	"github.com/goldenfork/reservation-api/internal/clock"
	"github.com/goldenfork/reservation-api/internal/config"
	"github.com/goldenfork/reservation-api/internal/handler"
	"github.com/goldenfork/reservation-api/internal/mailer"
	"github.com/goldenfork/reservation-api/internal/queue"
	"github.com/goldenfork/reservation-api/internal/repository"
	"github.com/goldenfork/reservation-api/internal/router"
	"github.com/goldenfork/reservation-api/internal/service"
	"github.com/goldenfork/reservation-api/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.OpenMongo(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() { _ = db.Close(context.Background()) }()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware degrade

	reservations := repository.NewReservationRepo(db)
	tables := repository.NewTableRepo(db)

	notifier := mailer.NewPublisher()
	clk := clock.NewSystem()

	booking := service.NewBookingService(reservations, tables, notifier, clk,
		service.WithHoldTTL(cfg.HoldTTL))
	waitlist := service.NewWaitlistService(reservations, tables, booking, notifier, clk)

	// Background loops: the hold-expiry sweeper and the mail consumer.
	sweeper := service.NewSweeper(reservations, clk, service.WithSweepPeriod(cfg.SweepPeriod))
	go sweeper.Run(ctx)
	go func() {
		if err := queue.StartEmailConsumer(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	var verifier captcha.Verifier
	if cfg.CaptchaSecret != "" {
		verifier = captcha.NewHTTPVerifier(cfg.CaptchaSecret, "")
	}

	deps := router.Deps{
		Reservations: handler.NewReservationHandler(booking),
		AdminRes:     handler.NewAdminReservationHandler(booking),
		Waitlist:     handler.NewWaitlistHandler(waitlist),
		Tables:       handler.NewTableHandler(tables),
		Auth:         handler.NewAuthHandler(cfg, notifier),
		JWTSecret:    cfg.JWTSecret,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Captcha:      verifier,
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, deps)
	router.RegisterAdmin(e, deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
