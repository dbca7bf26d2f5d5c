package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
)

// TranslationClient provides a client interface for the translation ledger service
type TranslationClient interface {
	// Submit a translation request on a channel (the suffix of the
	// translation.request.* subject, "default" unless deployed otherwise)
	Translate(ctx context.Context, channel string, req TranslationRequest) (*TranslationResponse, error)

	// Health and discovery
	CheckHealth(ctx context.Context, service string) (*HealthStatus, error)

	// Lifecycle
	Close() error
}

// NATSTranslationClient implements TranslationClient using NATS
type NATSTranslationClient struct {
	conn     *nats.Conn
	clientID string
	timeout  time.Duration
}

// NewNATSClient creates a new NATS-based translation client
func NewNATSClient(natsURL, clientID string) (TranslationClient, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if clientID == "" {
		clientID = "translation-client"
	}

	return &NATSTranslationClient{
		conn:     conn,
		clientID: clientID,
		timeout:  30 * time.Second,
	}, nil
}

// Translate submits one request and waits for the pipeline's reply.
func (c *NATSTranslationClient) Translate(ctx context.Context, channel string, req TranslationRequest) (*TranslationResponse, error) {
	if channel == "" {
		channel = "default"
	}
	topic := fmt.Sprintf("translation.request.%s", channel)

	if req.ReqID == "" {
		req.ReqID = ulid.Make().String()
	}
	replySubject := fmt.Sprintf("translation.response.%s.%s", c.clientID, req.ReqID)
	req.ReplyTo = replySubject

	slog.Debug("Sending translation request",
		"topic", topic,
		"req_id", req.ReqID,
		"reply_subject", replySubject)

	requestBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Subscribe to the reply subject before publishing
	replyChan := make(chan *nats.Msg, 1)
	sub, err := c.conn.Subscribe(replySubject, func(msg *nats.Msg) {
		replyChan <- msg
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to reply: %w", err)
	}
	defer sub.Unsubscribe()

	if err := c.conn.Publish(topic, requestBytes); err != nil {
		return nil, fmt.Errorf("failed to publish request: %w", err)
	}

	select {
	case msg := <-replyChan:
		var response TranslationResponse
		if err := json.Unmarshal(msg.Data, &response); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		return &response, nil

	case <-time.After(c.timeout):
		return nil, fmt.Errorf("request timeout after %v", c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CheckHealth checks if a ledger service is available and healthy
func (c *NATSTranslationClient) CheckHealth(ctx context.Context, service string) (*HealthStatus, error) {
	healthTopic := fmt.Sprintf("services.%s.health", service)

	msg, err := c.conn.RequestWithContext(ctx, healthTopic, nil)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}

	var health HealthStatus
	if err := json.Unmarshal(msg.Data, &health); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &health, nil
}

// Close closes the NATS connection
func (c *NATSTranslationClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// SetTimeout configures request timeout
func (c *NATSTranslationClient) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}
