// Package app initializes and orchestrates the main components of the
// TitleForge application. It wires together the configuration, job store,
// event bus, pipeline stages, and HTTP server.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/config"
	"github.com/sevigo/titleforge/internal/db"
	"github.com/sevigo/titleforge/internal/mailer"
	"github.com/sevigo/titleforge/internal/server"
	"github.com/sevigo/titleforge/internal/stages"
	"github.com/sevigo/titleforge/internal/store"
	"github.com/sevigo/titleforge/internal/titlegen"
	"github.com/sevigo/titleforge/internal/youtube"
)

// App holds the main application components.
type App struct {
	cfg      *config.Config
	server   *server.Server
	bus      *bus.Bus
	jobStore store.JobStore
	logger   *slog.Logger
	cleanup  func()
}

// NewApp sets up the application with all its dependencies. Collaborator
// credentials are not checked here; a missing key fails the individual job,
// not the process.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing TitleForge application",
		"store_backend", cfg.StoreBackend,
		"llm_provider", cfg.LLMProvider,
		"generator_model", cfg.GeneratorModelName)

	jobStore, cleanup, err := newJobStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job store: %w", err)
	}

	eventBus := bus.New(cfg.BusQueueSize, logger)

	resolver := youtube.NewClient(cfg.YouTubeAPIKey, logger)
	generator := titlegen.NewGenerator(cfg, logger)
	sender := mailer.NewClient(mailer.Config{
		APIKey:    cfg.ResendAPIKey,
		FromEmail: cfg.ResendFromEmail,
		BaseURL:   cfg.ResendBaseURL,
	})

	stages.RegisterAll(eventBus,
		stages.NewResolution(jobStore, eventBus, resolver, logger),
		stages.NewFetch(jobStore, eventBus, resolver, logger),
		stages.NewTransform(jobStore, eventBus, generator, logger),
		stages.NewDelivery(jobStore, eventBus, sender, logger),
		stages.NewNotifier(eventBus, sender, logger),
	)

	submission := stages.NewSubmission(jobStore, eventBus, logger)
	query := stages.NewQuery(jobStore, logger)
	httpServer := server.NewServer(cfg, submission, query, logger)

	logger.Info("TitleForge application initialized successfully")
	return &App{
		cfg:      cfg,
		server:   httpServer,
		bus:      eventBus,
		jobStore: jobStore,
		logger:   logger,
		cleanup:  cleanup,
	}, nil
}

// newJobStore builds the configured store backend.
func newJobStore(cfg *config.Config, logger *slog.Logger) (store.JobStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		logger.Info("connecting to redis job store", "addr", cfg.RedisAddr)
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		return store.NewRedisStore(client, logger), func() {}, nil

	case config.StoreBackendPostgres:
		logger.Info("connecting to postgres job store", "host", cfg.Database.Host)
		dbConn, dbCleanup, err := db.NewDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(dbConn, logger), dbCleanup, nil

	default:
		logger.Info("using in-memory job store")
		return store.NewMemoryStore(logger), func() {}, nil
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting TitleForge", "server_port", a.cfg.ServerPort)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly: the listener first so no new work
// arrives, then the bus so queued events finish, then the store.
func (a *App) Stop() error {
	a.logger.Info("shutting down TitleForge services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	a.bus.Stop()

	if err := a.jobStore.Close(); err != nil {
		a.logger.Error("error closing job store", "error", err)
	}
	if a.cleanup != nil {
		a.cleanup()
	}

	if serverErr != nil {
		return serverErr
	}

	a.logger.Info("TitleForge stopped successfully")
	return nil
}
