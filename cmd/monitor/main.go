package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
)

// ServiceStatus is the heartbeat payload a ledger service publishes.
type ServiceStatus struct {
	ServiceName  string    `json:"service_name"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity"`
	Capabilities []string  `json:"capabilities"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
	LedgerPath   string    `json:"ledger_path"`
	LedgerSize   int       `json:"ledger_size"`
	Version      string    `json:"version"`
	LastSeen     time.Time `json:"last_seen"`
	FirstSeen    time.Time `json:"first_seen"`
}

// BackpressureReport mirrors the service-side backpressure payload.
type BackpressureReport struct {
	ServiceName      string    `json:"service_name"`
	PendingMessages  int64     `json:"pending_messages"`
	ActiveProcessing int64     `json:"active_processing"`
	Timestamp        time.Time `json:"timestamp"`
	WorkerCount      int       `json:"worker_count"`
	QueueCapacity    int       `json:"queue_capacity"`
	Status           string    `json:"status"`
}

// MonitorService aggregates heartbeats and backpressure reports from every
// ledger service on the bus.
type MonitorService struct {
	nats         *nats.Conn
	mu           sync.RWMutex
	services     map[string]*ServiceStatus
	backpressure map[string]*BackpressureReport
}

func NewMonitorService(natsURL string) (*MonitorService, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &MonitorService{
		nats:         nc,
		services:     make(map[string]*ServiceStatus),
		backpressure: make(map[string]*BackpressureReport),
	}, nil
}

func (m *MonitorService) Start(ctx context.Context) error {
	_, err := m.nats.Subscribe("monitoring.services.heartbeat.*", func(msg *nats.Msg) {
		var status ServiceStatus
		if err := json.Unmarshal(msg.Data, &status); err != nil {
			log.Printf("Failed to parse heartbeat from %s: %v", msg.Subject, err)
			return
		}

		now := time.Now()
		status.LastSeen = now

		m.mu.Lock()
		if existing, exists := m.services[status.ServiceName]; exists {
			status.FirstSeen = existing.FirstSeen
		} else {
			status.FirstSeen = now
		}
		m.services[status.ServiceName] = &status
		m.mu.Unlock()

		log.Printf("Heartbeat: %s -> %s (ledger entries: %d)", status.ServiceName, status.Status, status.LedgerSize)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to heartbeats: %w", err)
	}

	_, err = m.nats.Subscribe("monitoring.services.backpressure.*", func(msg *nats.Msg) {
		var report BackpressureReport
		if err := json.Unmarshal(msg.Data, &report); err != nil {
			log.Printf("Failed to parse backpressure report from %s: %v", msg.Subject, err)
			return
		}

		m.mu.Lock()
		m.backpressure[report.ServiceName] = &report
		m.mu.Unlock()

		if report.Status != "healthy" {
			log.Printf("Backpressure %s: %s (pending=%d active=%d)",
				report.ServiceName, report.Status, report.PendingMessages, report.ActiveProcessing)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to backpressure reports: %w", err)
	}

	log.Println("Monitor started, listening for heartbeats and backpressure reports...")

	go m.cleanupStaleServices(ctx)

	return nil
}

func (m *MonitorService) cleanupStaleServices(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * time.Minute)
			m.mu.Lock()
			for name, status := range m.services {
				if status.LastSeen.Before(cutoff) {
					log.Printf("Service went stale: %s (last seen %v)", name, status.LastSeen)
					status.Status = "offline"
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *MonitorService) snapshot() []map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		entry := map[string]interface{}{
			"service": m.services[name],
		}
		if bp, ok := m.backpressure[name]; ok {
			entry["backpressure"] = bp
		}
		out = append(out, entry)
	}
	return out
}

func (m *MonitorService) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.snapshot())
}

func main() {
	natsURL := flag.String("nats", "nats://127.0.0.1:4222", "NATS server URL")
	httpAddr := flag.String("http", ":8090", "HTTP status address")
	flag.Parse()

	monitor, err := NewMonitorService(*natsURL)
	if err != nil {
		log.Fatalf("Failed to create monitor: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := monitor.Start(ctx); err != nil {
		log.Fatalf("Failed to start monitor: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", monitor.handleStatus)

	go func() {
		log.Printf("Monitor status endpoint on %s/status", *httpAddr)
		if err := http.ListenAndServe(*httpAddr, mux); err != nil {
			log.Printf("HTTP server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Monitor shutting down")
}
