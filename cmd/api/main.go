package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/api"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/config"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/events"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/logging"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/persistence/memory"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/persistence/mongodb"
	"github.com/mger1608/fcc-backend-exercise-tracker/internal/persistence/postgres"
	httptransport "github.com/mger1608/fcc-backend-exercise-tracker/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store")
	}
	logger.Info().Str("backend", cfg.StoreBackend).Msg("store ready")

	publisher := newPublisher(cfg, logger)

	opts := []domain.Option{
		domain.WithPublisher(publisher),
		domain.WithLogger(logger),
		domain.WithPublishTimeout(cfg.PublishTimeout),
	}
	users := domain.NewUserStore(store, opts...)
	exercises := domain.NewExerciseStore(users, store, opts...)

	handler := api.NewHandler(users, exercises, store)
	router := api.NewRouter(handler, api.RouterConfig{AllowedOrigins: cfg.CORSAllowedOrigins}, logger)

	serverCfg := httptransport.ServerConfig{
		Address:         cfg.HTTPAddress,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
	server := httptransport.NewServer(serverCfg, router, logger)

	logger.Info().Str("address", cfg.HTTPAddress).Msg("exercise tracker listening")
	if err := httptransport.Serve(ctx, server, serverCfg); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutting down")

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer cancel()
	if err := publisher.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close event publisher")
	}
	if err := store.Close(closeCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to close store")
	}
}

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg config.Config) (domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendMongo:
		repo, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(context.Background())
			return nil, err
		}
		return repo, nil
	case config.BackendPostgres:
		repo, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close(context.Background())
			return nil, err
		}
		return repo, nil
	case config.BackendMemory:
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

func newPublisher(cfg config.Config, logger zerolog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info().Msg("KAFKA_BROKERS not set, event publishing disabled")
		return events.NoopPublisher{}
	}
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.EventsTopic).Msg("publishing events to kafka")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic)
}
