package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voulezvous/translation-ledger/internal/config"
)

type HealthService struct {
	nats     *nats.Conn
	config   *config.Config
	pipeline *PipelineService
}

type HealthStatus struct {
	ServiceName  string    `json:"service_name"`
	Status       string    `json:"status"` // online, offline, busy
	LastActivity time.Time `json:"last_activity"`
	Capabilities []string  `json:"capabilities"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
	LedgerPath   string    `json:"ledger_path"`
	LedgerSize   int       `json:"ledger_size"`
	Version      string    `json:"version"`
}

func NewHealthService(natsConn *nats.Conn, cfg *config.Config, pipeline *PipelineService) *HealthService {
	return &HealthService{
		nats:     natsConn,
		config:   cfg,
		pipeline: pipeline,
	}
}

func (h *HealthService) Start(ctx context.Context) error {
	// Subscribe to health check requests for this service
	healthTopic := fmt.Sprintf("services.%s.health", h.config.ServiceName)

	_, err := h.nats.Subscribe(healthTopic, func(msg *nats.Msg) {
		status := h.getHealthStatus()

		statusData, err := json.Marshal(status)
		if err != nil {
			slog.Error("Failed to marshal health status", "error", err)
			return
		}

		if err := msg.Respond(statusData); err != nil {
			slog.Error("Failed to respond to health check", "error", err)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to subscribe to health topic: %w", err)
	}

	slog.Info("Health service started", "topic", healthTopic)

	go h.publishHeartbeats(ctx)

	return nil
}

func (h *HealthService) publishHeartbeats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	heartbeatTopic := fmt.Sprintf("monitoring.services.heartbeat.%s", h.config.ServiceName)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := h.getHealthStatus()
			statusData, err := json.Marshal(status)
			if err != nil {
				continue
			}

			if err := h.nats.Publish(heartbeatTopic, statusData); err != nil {
				slog.Warn("Failed to publish heartbeat", "error", err)
			}
		}
	}
}

func (h *HealthService) getHealthStatus() HealthStatus {
	size := 0
	if envs, err := h.pipeline.Ledger().ReadAll(); err == nil {
		size = len(envs)
	}

	return HealthStatus{
		ServiceName:  h.config.ServiceName,
		Status:       "online",
		LastActivity: time.Now(),
		Capabilities: []string{"translation", "ledger-append", "ledger-read"},
		Endpoint:     fmt.Sprintf("http://localhost%s", h.config.HTTPAddr),
		NATSTopic:    h.config.Subject,
		LedgerPath:   h.pipeline.Ledger().Path(),
		LedgerSize:   size,
		Version:      "1.0.0",
	}
}
