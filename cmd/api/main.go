package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/dentaflow-api/internal/config"
	"github.com/harentsoaR/dentaflow-api/internal/handlers"
	"github.com/harentsoaR/dentaflow-api/internal/logger"
	"github.com/harentsoaR/dentaflow-api/internal/metrics"
	"github.com/harentsoaR/dentaflow-api/internal/notify"
	"github.com/harentsoaR/dentaflow-api/internal/router"
	"github.com/harentsoaR/dentaflow-api/internal/services"
	"github.com/harentsoaR/dentaflow-api/internal/store"
	"github.com/harentsoaR/dentaflow-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log.Level, os.Stdout)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Directory Store ---
	dir, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer closeStore()

	// --- Fan-out ---
	m := metrics.New()
	hub := notify.NewHub(cfg.Events.Buffer, m, log)
	publishers := notify.Multi{hub}
	if cfg.Redis.URL != "" {
		mirror, err := notify.NewRedisMirror(ctx, cfg.Redis.URL, cfg.Redis.Channel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer mirror.Close()
		publishers = append(publishers, mirror)
		log.Info().Str("channel", cfg.Redis.Channel).Msg("Mirroring events to Redis")
	}

	// --- Services ---
	notificationSvc := services.NewNotificationService(publishers, log)
	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.TokenTTL())
	if cfg.Clinic.DemoLogins {
		log.Warn().Msg("Demo logins are ENABLED. Do not use in production.")
	}
	if cfg.Chat.ServiceURL == "" {
		log.Info().Msg("No chat service configured, using built-in replies.")
	}

	h := handlers.NewHandler(handlers.Handler{
		Accounts: services.NewAccountService(dir.Users, services.AccountPolicy{
			MaxSecretaries: cfg.Clinic.MaxSecretaries,
			StaffCode:      cfg.Clinic.StaffCode,
			AdminCode:      cfg.Clinic.AdminCode,
			DemoLogins:     cfg.Clinic.DemoLogins,
		}, log),
		Appointments: services.NewAppointmentService(dir.Appointments, notificationSvc, log),
		Ratings:      services.NewRatingService(dir.Ratings, log),
		Chat:         services.NewChatService(cfg.Chat.ServiceURL, cfg.Chat.Timeout, log),
		Events:       hub,
		Tokens:       tokens,
		Heartbeat:    cfg.Events.Heartbeat,
	})

	r := router.New(h, router.Options{
		Log:            log,
		Metrics:        m,
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelling the base context ends open event streams on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Directory, func(), error) {
	if cfg.Mongo.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, nil, err
		}
		dir, err := store.NewMongo(connectCtx, client.Database(cfg.Mongo.Database))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("Successfully connected to MongoDB!")
		return dir, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(disconnectCtx)
		}, nil
	}

	seed := store.DefaultSeed()
	if cfg.SeedFile != "" {
		var err error
		if seed, err = store.LoadSeedFile(cfg.SeedFile); err != nil {
			return nil, nil, err
		}
	}
	log.Info().Int("appointments", len(seed)).Msg("Using in-memory store, data resets on restart")
	return store.NewMemory(seed), func() {}, nil
}
