package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wealthdesk/wealthdesk/internal/api"
	"github.com/wealthdesk/wealthdesk/internal/config"
	"github.com/wealthdesk/wealthdesk/internal/gateway"
	"github.com/wealthdesk/wealthdesk/internal/llm"
	"github.com/wealthdesk/wealthdesk/internal/observability"
	"github.com/wealthdesk/wealthdesk/internal/schema"
	"github.com/wealthdesk/wealthdesk/internal/seed"
	"github.com/wealthdesk/wealthdesk/internal/store"
	"github.com/wealthdesk/wealthdesk/internal/store/document"
	"github.com/wealthdesk/wealthdesk/internal/store/relational"
)

func main() {
	cfg, err := config.LoadFromEnv("wealthdesk-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	model, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize model client", slog.Any("error", err))
		os.Exit(1)
	}

	service := &gateway.Service{Model: model, Logger: logger}
	readiness := []api.ReadinessCheck{}

	// A store that cannot be reached at startup is left unset so questions
	// routed to it get a per-request apology instead of a crashed server.
	relationalDB, err := relational.Open(context.Background(), relational.DBConfig{
		Driver:          cfg.Relational.Driver,
		DSN:             cfg.Relational.DSN,
		MaxOpenConns:    cfg.Relational.MaxOpenConns,
		MaxIdleConns:    cfg.Relational.MaxIdleConns,
		ConnMaxLifetime: cfg.Relational.ConnMaxLifetime,
	})
	if err != nil {
		logger.Warn("relational store unavailable", slog.String("driver", cfg.Relational.Driver), slog.Any("error", err))
		readiness = append(readiness, missingStore("relational"))
	} else {
		defer func() { _ = relationalDB.Close() }()
		if cfg.Relational.Driver == config.DriverDuckDB {
			seedEmbedded(logger, relationalDB)
		}
		relationalExecutor := relational.NewExecutor(relationalDB, cfg.Relational.QueryTimeout)
		service.Relational = relationalExecutor
		readiness = append(readiness, relationalExecutor.HealthCheck)
	}

	mongoClient, clients, err := document.Connect(context.Background(), document.ClientConfig{
		URI:        cfg.Document.URI,
		Database:   cfg.Document.Database,
		Collection: cfg.Document.Collection,
	})
	if err != nil {
		logger.Warn("document store unavailable", slog.String("database", cfg.Document.Database), slog.Any("error", err))
		readiness = append(readiness, missingStore("document"))
	} else {
		defer disconnect(logger, mongoClient)
		documentExecutor := document.NewExecutor(document.NewCollection(clients), schema.Clients(), cfg.Document.QueryTimeout)
		service.Document = documentExecutor
		readiness = append(readiness, documentExecutor.HealthCheck)
	}

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(readiness...),
		DependencyTimeout: 2 * time.Second,
		Gateway:           service,
		Descriptors:       []*schema.Descriptor{schema.Clients(), schema.Portfolios()},
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address), slog.String("relational_driver", cfg.Relational.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
	}
}

func missingStore(name string) api.ReadinessCheck {
	return func(context.Context) error {
		return store.Unavailable(name, errors.New("not connected"))
	}
}

// The embedded engine starts empty on every boot.
func seedEmbedded(logger *slog.Logger, db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	inserted, err := seed.Relational(ctx, db, config.DriverDuckDB)
	if err != nil {
		logger.Warn("failed to seed embedded portfolios", slog.Any("error", err))
		return
	}
	logger.Info("seeded embedded portfolios", slog.Int("rows", inserted))
}

func disconnect(logger *slog.Logger, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Warn("mongo disconnect failed", slog.Any("error", err))
	}
}
