package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voulezvous/translation-ledger/internal/config"
	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/provider"
)

// generateWorkerID creates a unique worker ID using timestamp and random bytes
func generateWorkerID() string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	randomHex := hex.EncodeToString(randomBytes)
	return fmt.Sprintf("worker-%d-%s", timestamp, randomHex)
}

// TranslationResponse is the reply payload for one translation request,
// over NATS and HTTP alike.
type TranslationResponse struct {
	ReqID      string           `json:"req_id"`
	ContractID string           `json:"contract_id,omitempty"`
	Envelope   *models.Envelope `json:"envelope,omitempty"`
	DurationMs int64            `json:"duration_ms"`
	Error      string           `json:"error,omitempty"`
}

// NATSService consumes translation requests from a JetStream work queue,
// runs them through the pipeline, and replies on the request's reply_to
// subject. It also fans every durable ledger append out on the configured
// append subject.
type NATSService struct {
	conn       *nats.Conn
	js         nats.JetStreamContext
	pipeline   *PipelineService
	prov       provider.Provider
	cfg        *config.Config
	monitoring *MonitoringService
}

func NewNATSService(cfg *config.Config, pipeline *PipelineService, prov provider.Provider) (*NATSService, error) {
	conn, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSService{
		conn:       conn,
		js:         js,
		pipeline:   pipeline,
		prov:       prov,
		cfg:        cfg,
		monitoring: NewMonitoringService(conn, cfg, pipeline),
	}, nil
}

func (s *NATSService) Start(ctx context.Context) error {
	if err := s.ensureStream(); err != nil {
		return fmt.Errorf("failed to ensure stream: %w", err)
	}

	consumer, err := s.createConsumer()
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	slog.Info("NATS service starting",
		"stream", s.cfg.Stream,
		"subject", s.cfg.Subject,
		"consumer", s.cfg.Durable,
		"concurrency", s.cfg.Concurrency)

	go s.monitoring.Start(ctx)

	for i := 0; i < s.cfg.Concurrency; i++ {
		workerID := generateWorkerID()
		go s.worker(ctx, consumer, workerID)
	}

	<-ctx.Done()
	slog.Info("NATS service shutting down")

	s.conn.Close()
	return nil
}

// NotifyAppended publishes every durable append on the append subject so
// downstream consumers (replication, audit tooling) can follow the ledger
// without tailing the file. Best effort: a failed publish never unwinds a
// write that already happened.
func (s *NATSService) NotifyAppended(env *models.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("Failed to marshal append event", "contract_id", env.Contract.ID, "error", err)
		return
	}
	subject := fmt.Sprintf("%s.%s", s.cfg.AppendSubject, env.Contract.Provenance.TenantID)
	if err := s.conn.Publish(subject, data); err != nil {
		slog.Warn("Failed to publish append event",
			"subject", subject,
			"contract_id", env.Contract.ID,
			"error", err)
	}
}

func (s *NATSService) ensureStream() error {
	streamInfo, err := s.js.StreamInfo(s.cfg.Stream)
	if err != nil {
		if err == nats.ErrStreamNotFound {
			_, err = s.js.AddStream(&nats.StreamConfig{
				Name:      s.cfg.Stream,
				Subjects:  []string{s.cfg.Subject},
				MaxMsgs:   int64(s.cfg.MaxMsgs),
				MaxAge:    s.cfg.MaxAge,
				Storage:   nats.FileStorage,
				Retention: nats.WorkQueuePolicy,
			})
			if err != nil {
				return fmt.Errorf("failed to create stream: %w", err)
			}
			slog.Info("Created NATS stream", "name", s.cfg.Stream)
		} else {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
	} else {
		hasSubject := false
		for _, subject := range streamInfo.Config.Subjects {
			if subject == s.cfg.Subject {
				hasSubject = true
				break
			}
		}

		if !hasSubject {
			newConfig := streamInfo.Config
			newConfig.Subjects = append(newConfig.Subjects, s.cfg.Subject)
			_, err = s.js.UpdateStream(&newConfig)
			if err != nil {
				return fmt.Errorf("failed to update stream with new subject: %w", err)
			}
			slog.Info("Updated NATS stream with new subject", "name", s.cfg.Stream, "subject", s.cfg.Subject)
		} else {
			slog.Info("NATS stream already exists", "name", s.cfg.Stream, "messages", streamInfo.State.Msgs)
		}
	}

	return nil
}

func (s *NATSService) createConsumer() (*nats.Subscription, error) {
	sub, err := s.js.PullSubscribe(s.cfg.Subject, s.cfg.Durable, nats.ManualAck())
	if err != nil {
		return nil, fmt.Errorf("failed to create pull consumer: %w", err)
	}

	slog.Info("Created NATS consumer", "durable", s.cfg.Durable)
	return sub, nil
}

func (s *NATSService) worker(ctx context.Context, consumer *nats.Subscription, workerID string) {
	slog.Info("NATS worker starting", "worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			slog.Info("NATS worker shutting down", "worker_id", workerID)
			return
		default:
			msgs, err := consumer.Fetch(1, nats.MaxWait(time.Second))
			if err != nil {
				if err == nats.ErrTimeout {
					continue // Normal timeout, continue polling
				}
				slog.Error("Failed to fetch messages", "worker_id", workerID, "error", err)
				time.Sleep(time.Second) // Back off on error
				continue
			}

			for _, msg := range msgs {
				s.monitoring.IncrementPending()
				s.processTranslationMessage(ctx, msg, workerID)
				s.monitoring.DecrementPending()
			}
		}
	}
}

func (s *NATSService) processTranslationMessage(ctx context.Context, msg *nats.Msg, workerID string) {
	s.monitoring.IncrementActive()
	defer s.monitoring.DecrementActive()

	start := time.Now()

	var req models.TranslationRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		slog.Error("Failed to parse translation request",
			"worker_id", workerID,
			"error", err,
			"data", string(msg.Data))
		msg.Nak()
		return
	}

	if req.TraceID == "" {
		req.TraceID = req.ReqID
	}

	slog.Debug("Processing NATS translation request",
		"worker_id", workerID,
		"req_id", req.ReqID,
		"trace_id", req.TraceID,
		"subject", msg.Subject)

	env, err := s.pipeline.Process(
		ctx,
		s.prov,
		req,
		fmt.Sprintf("nats.%s", msg.Subject),
		workerID,
	)

	response := TranslationResponse{
		ReqID:      req.ReqID,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		response.Error = err.Error()
	} else {
		response.ContractID = env.Contract.ID
		response.Envelope = env
	}

	responseData, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		slog.Error("Failed to marshal response",
			"worker_id", workerID,
			"req_id", req.ReqID,
			"error", marshalErr)
		msg.Nak()
		return
	}

	// Use reply_to from message payload, not msg.Reply
	if req.ReplyTo != "" {
		if publishErr := s.conn.Publish(req.ReplyTo, responseData); publishErr != nil {
			slog.Error("Failed to publish response",
				"worker_id", workerID,
				"req_id", req.ReqID,
				"reply_subject", req.ReplyTo,
				"error", publishErr)
		}
	}

	if ackErr := msg.Ack(); ackErr != nil {
		slog.Error("Failed to acknowledge message",
			"worker_id", workerID,
			"req_id", req.ReqID,
			"error", ackErr)
	}

	duration := time.Since(start)

	if err == nil {
		slog.Info("NATS translation completed",
			"worker_id", workerID,
			"req_id", req.ReqID,
			"contract_id", env.Contract.ID,
			"duration_ms", duration.Milliseconds())
	} else {
		slog.Error("NATS translation failed",
			"worker_id", workerID,
			"req_id", req.ReqID,
			"duration_ms", duration.Milliseconds(),
			"error", err)
	}
}

func (s *NATSService) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

func (s *NATSService) GetConnection() *nats.Conn {
	return s.conn
}

func (s *NATSService) GetMonitoringService() *MonitoringService {
	return s.monitoring
}
