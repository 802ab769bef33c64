package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"reservaja/internal/api"
	"reservaja/internal/auth"
	"reservaja/internal/config"
	"reservaja/internal/db"
	"reservaja/internal/repository"
	"reservaja/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.RunMigrations(conn, cfg.DatabaseDriver); err != nil {
		return err
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	policy, err := auth.LoadPolicyFile(cfg.PolicyFile)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(conn)
	roomRepo := repository.NewRoomRepository(conn)
	reservationRepo := repository.NewReservationRepository(conn)
	jobRepo := repository.NewJobRepository(conn)

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	defer sender.Wait()

	authSvc := service.NewAuthService(userRepo, codec, logger)
	roomSvc := service.NewRoomService(roomRepo)
	guard := service.NewBookingGuard(reservationRepo, time.Now)
	reservationSvc := service.NewReservationService(reservationRepo, roomRepo, userRepo, guard, sender, logger)
	jobSvc := service.NewJobService(jobRepo, sender, cfg.ReminderLead, logger)

	scheduler := cron.New()
	if _, err := jobSvc.Schedule(scheduler, cfg.ReminderSchedule); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	router := api.NewRouter(api.Dependencies{
		Auth:           api.NewAuthHandler(authSvc),
		Rooms:          api.NewRoomHandler(roomSvc),
		Reservations:   api.NewReservationHandler(reservationSvc),
		Verifier:       codec,
		Resolver:       authSvc,
		Policy:         policy,
		RequestTimeout: cfg.RequestTimeout,
		Now:            time.Now,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.WithServerMiddleware(router, os.Stdout, cfg.CORSAllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "port", cfg.Port, "driver", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSender(cfg *config.Config, logger *slog.Logger) (*service.SenderService, error) {
	loc, err := time.LoadLocation(cfg.Notify.Location)
	if err != nil {
		return nil, err
	}

	var email service.EmailSender
	if cfg.Notify.EmailEnabled() {
		sg, err := service.NewSendGridSender(cfg.Notify.SendGridAPIKey, cfg.Notify.SendGridFromEmail, cfg.Notify.SendGridFromName, logger)
		if err != nil {
			return nil, err
		}
		email = sg
	} else {
		logger.Warn("SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, emails disabled")
	}

	var sms service.SMSSender
	if cfg.Notify.SMSEnabled() {
		tw, err := service.NewTwilioSender(cfg.Notify.TwilioAccountSID, cfg.Notify.TwilioAuthToken, cfg.Notify.TwilioFromNumber, logger)
		if err != nil {
			return nil, err
		}
		sms = tw
	} else {
		logger.Warn("Twilio credentials not set, SMS disabled")
	}
	return service.NewSenderService(email, sms, loc, logger), nil
}
