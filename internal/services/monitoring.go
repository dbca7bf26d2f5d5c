package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voulezvous/translation-ledger/internal/config"
)

// MonitoringService publishes periodic backpressure reports for the
// append queue. Each report pairs queue-side counters (pending, active)
// with ledger-side ones (contracts appended, appends rejected at the
// final gate, current ledger depth) so a fleet monitor can see both how
// fast work arrives and whether it is actually landing on disk.
type MonitoringService struct {
	nats         *nats.Conn
	config       *config.Config
	pipeline     *PipelineService
	pendingCount int64 // atomic counter
	activeCount  int64 // atomic counter for active processing
}

type BackpressureReport struct {
	ServiceName       string    `json:"service_name"`
	PendingMessages   int64     `json:"pending_messages"`
	ActiveProcessing  int64     `json:"active_processing"`
	ContractsAppended int64     `json:"contracts_appended"`
	AppendErrors      int64     `json:"append_errors"`
	LedgerEntries     int       `json:"ledger_entries"` // -1 when the ledger cannot be read
	Timestamp         time.Time `json:"timestamp"`
	WorkerCount       int       `json:"worker_count"`
	QueueCapacity     int       `json:"queue_capacity"`
	Status            string    `json:"status"` // healthy, warning, critical
}

func NewMonitoringService(natsConn *nats.Conn, cfg *config.Config, pipeline *PipelineService) *MonitoringService {
	return &MonitoringService{
		nats:     natsConn,
		config:   cfg,
		pipeline: pipeline,
	}
}

func (m *MonitoringService) Start(ctx context.Context) error {
	slog.Info("Starting monitoring service",
		"topic", m.config.MonitoringTopic,
		"threshold", m.config.BackpressureThreshold)

	go m.monitorBackpressure(ctx)

	return nil
}

func (m *MonitoringService) monitorBackpressure(ctx context.Context) {
	// Different intervals based on load
	highLoadTicker := time.NewTicker(1 * time.Second)  // When pending > 0
	lowLoadTicker := time.NewTicker(10 * time.Second)  // When pending = 0
	defer highLoadTicker.Stop()
	defer lowLoadTicker.Stop()

	var currentTicker *time.Ticker = lowLoadTicker

	for {
		select {
		case <-ctx.Done():
			return
		case <-currentTicker.C:
			pending := atomic.LoadInt64(&m.pendingCount)

			if pending > 0 && currentTicker == lowLoadTicker {
				currentTicker = highLoadTicker
				slog.Debug("Switched to high-frequency monitoring", "pending", pending)
			} else if pending == 0 && currentTicker == highLoadTicker {
				currentTicker = lowLoadTicker
				slog.Debug("Switched to low-frequency monitoring")
			}

			m.publishReport(m.buildReport())
		}
	}
}

// buildReport snapshots the queue and ledger counters into one report.
func (m *MonitoringService) buildReport() BackpressureReport {
	pending := atomic.LoadInt64(&m.pendingCount)
	active := atomic.LoadInt64(&m.activeCount)

	report := BackpressureReport{
		ServiceName:      m.config.ServiceName,
		PendingMessages:  pending,
		ActiveProcessing: active,
		LedgerEntries:    -1,
		Timestamp:        time.Now(),
		WorkerCount:      m.config.Concurrency,
		QueueCapacity:    int(m.config.MaxMsgs),
		Status:           m.calculateStatus(pending, active),
	}

	if m.pipeline != nil {
		report.ContractsAppended, report.AppendErrors = m.pipeline.AppendStats()
		if envs, err := m.pipeline.Ledger().ReadAll(); err != nil {
			slog.Warn("Failed to read ledger for backpressure report", "error", err)
		} else {
			report.LedgerEntries = len(envs)
		}
	}

	return report
}

func (m *MonitoringService) publishReport(report BackpressureReport) {
	reportData, err := json.Marshal(report)
	if err != nil {
		slog.Error("Failed to marshal backpressure report", "error", err)
		return
	}

	topic := fmt.Sprintf("%s.%s", m.config.MonitoringTopic, m.config.ServiceName)
	if err := m.nats.Publish(topic, reportData); err != nil {
		slog.Warn("Failed to publish backpressure report", "error", err)
		return
	}

	if report.PendingMessages > 0 || report.AppendErrors > 0 || report.Status != "healthy" {
		slog.Info("Backpressure report",
			"pending", report.PendingMessages,
			"active", report.ActiveProcessing,
			"appended", report.ContractsAppended,
			"append_errors", report.AppendErrors,
			"ledger_entries", report.LedgerEntries,
			"status", report.Status)
	}
}

func (m *MonitoringService) calculateStatus(pending, active int64) string {
	total := pending + active
	threshold := int64(m.config.BackpressureThreshold)

	if total == 0 {
		return "healthy"
	} else if total < threshold {
		return "warning"
	} else {
		return "critical"
	}
}

// IncrementPending atomically increments pending message count
func (m *MonitoringService) IncrementPending() {
	atomic.AddInt64(&m.pendingCount, 1)
}

// DecrementPending atomically decrements pending message count
func (m *MonitoringService) DecrementPending() {
	atomic.AddInt64(&m.pendingCount, -1)
}

// IncrementActive atomically increments active processing count
func (m *MonitoringService) IncrementActive() {
	atomic.AddInt64(&m.activeCount, 1)
}

// DecrementActive atomically decrements active processing count
func (m *MonitoringService) DecrementActive() {
	atomic.AddInt64(&m.activeCount, -1)
}

// GetPendingCount returns current pending count
func (m *MonitoringService) GetPendingCount() int64 {
	return atomic.LoadInt64(&m.pendingCount)
}

// GetActiveCount returns current active count
func (m *MonitoringService) GetActiveCount() int64 {
	return atomic.LoadInt64(&m.activeCount)
}
