package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/voulezvous/translation-ledger/internal/config"
	"github.com/voulezvous/translation-ledger/internal/contract"
	"github.com/voulezvous/translation-ledger/internal/ledger"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/provider/httpapi"
	"github.com/voulezvous/translation-ledger/internal/repository"
	"github.com/voulezvous/translation-ledger/internal/schema"
	"github.com/voulezvous/translation-ledger/internal/services"
	"github.com/voulezvous/translation-ledger/internal/signing"
	"github.com/voulezvous/translation-ledger/internal/store"
	"github.com/voulezvous/translation-ledger/pkg/server"
)

func main() {
	var envFile = flag.String("env", "", "Optional .env file to load")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize database
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Log startup event
	db.Event("info", "startup", "Server starting", map[string]interface{}{
		"service_name": cfg.ServiceName,
		"http_addr":    cfg.HTTPAddr,
		"ledger_path":  cfg.LedgerPath,
		"db_path":      cfg.DBPath,
	})

	// Initialize repository
	repo := repository.NewSQLiteRepository(db)

	// Configure contract signing (optional)
	var signer signing.Signer
	if cfg.SigningSeed != "" {
		edSigner, err := signing.NewEd25519Signer(cfg.SigningSeed)
		if err != nil {
			db.Event("error", "signing.failed", "Signer initialization failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("Failed to initialize signer", "error", err)
			os.Exit(1)
		}
		signer = edSigner
		slog.Info("Contract signing enabled", "public_key", edSigner.PublicKeyHex())
	} else {
		slog.Info("Contract signing disabled, signatures will be empty")
	}

	// Select translation provider by explicit configuration
	var prov provider.Provider
	switch cfg.ProviderKind {
	case "http":
		prov = httpapi.New(cfg.ProviderURL, cfg.ProviderAPIKey, cfg.ProviderTimeout)
	case "fixture":
		prov = &provider.Fixture{Confidence: cfg.FixtureConfidence}
	default:
		db.Event("error", "provider.failed", "Unknown provider kind", map[string]interface{}{
			"provider_kind": cfg.ProviderKind,
		})
		slog.Error("Unknown provider kind", "provider_kind", cfg.ProviderKind)
		os.Exit(1)
	}

	db.Event("info", "provider.ready", "Provider configured", map[string]interface{}{
		"provider_kind": cfg.ProviderKind,
		"provider_url":  cfg.ProviderURL,
	})

	// Initialize the ledger pipeline
	validator := schema.NewValidator()
	ledgerStore := ledger.NewStore(cfg.LedgerPath, validator)
	builder := contract.NewBuilder(signer)
	pipeline := services.NewPipelineService(builder, validator, ledgerStore, repo)

	// Log services initialization
	db.Event("info", "services.init", "Initializing services", map[string]interface{}{
		"http_addr": cfg.HTTPAddr,
		"nats_url":  cfg.NatsURL,
	})

	// Initialize NATS service
	natsService, err := services.NewNATSService(cfg, pipeline, prov)
	if err != nil {
		db.Event("error", "nats.failed", "NATS service initialization failed", map[string]interface{}{
			"nats_url": cfg.NatsURL,
			"error":    err.Error(),
		})
		slog.Error("Failed to create NATS service", "error", err)
		os.Exit(1)
	}
	pipeline.SetNotifier(natsService)

	// Initialize health service for service discovery
	healthService := services.NewHealthService(natsService.GetConnection(), cfg, pipeline)

	// Start HTTP server
	httpServer := server.NewServer(cfg.HTTPAddr, pipeline, prov)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Log server ready
	db.Event("info", "server.ready", "Server ready to accept requests", map[string]interface{}{
		"http_addr":   cfg.HTTPAddr,
		"ledger_path": cfg.LedgerPath,
		"nats_url":    cfg.NatsURL,
	})

	// Start all services
	go func() {
		if err := httpServer.Start(ctx); err != nil {
			db.Event("error", "http.failed", "HTTP server failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	go func() {
		if err := natsService.Start(ctx); err != nil {
			db.Event("error", "nats.failed", "NATS service failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("NATS service failed", "error", err)
		}
	}()

	go func() {
		if err := healthService.Start(ctx); err != nil {
			db.Event("error", "health.failed", "Health service failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("Health service failed", "error", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("Shutting down server")
}
