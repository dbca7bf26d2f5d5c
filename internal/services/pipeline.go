package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/voulezvous/translation-ledger/internal/contract"
	"github.com/voulezvous/translation-ledger/internal/ledger"
	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/repository"
	"github.com/voulezvous/translation-ledger/internal/schema"
)

// ProviderError marks a failure that originated inside a provider. The
// pipeline adds no retries and no interpretation; the wrapped error is the
// provider's own, propagated verbatim for the caller to act on.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AppendNotifier is told about every durable ledger append. Used to fan
// appends out to NATS subscribers; nil-able.
type AppendNotifier interface {
	NotifyAppended(env *models.Envelope)
}

// PipelineService composes provider invocation, contract building,
// validation, and ledger append into one operation that is atomic from the
// caller's perspective: any failure at any stage aborts before persistence
// and nothing partial is ever written.
type PipelineService struct {
	builder   *contract.Builder
	validator *schema.Validator
	ledger    *ledger.Store
	repo      repository.Repository
	notifier  AppendNotifier

	appendedTotal int64 // atomic: successful ledger appends since start
	appendErrors  int64 // atomic: appends rejected at the final gate
}

func NewPipelineService(builder *contract.Builder, validator *schema.Validator, ledgerStore *ledger.Store, repo repository.Repository) *PipelineService {
	return &PipelineService{
		builder:   builder,
		validator: validator,
		ledger:    ledgerStore,
		repo:      repo,
	}
}

// SetNotifier wires an append notifier after construction. The NATS
// service is built later in startup than the pipeline, so wiring is
// two-phase.
func (s *PipelineService) SetNotifier(n AppendNotifier) {
	s.notifier = n
}

// Process runs one translation request end to end and returns the
// envelope only after it is durably recorded. Request-level rules are
// enforced before the provider is invoked, so a bad request costs no
// provider call and touches no ledger bytes. Exactly one ledger append
// happens per successful call, zero on any failure path.
func (s *PipelineService) Process(ctx context.Context, prov provider.Provider, req models.TranslationRequest, source, workerID string) (*models.Envelope, error) {
	start := time.Now()

	if req.TraceID == "" {
		req.TraceID = req.ReqID
	}

	if err := s.validator.ValidateRequest(&req); err != nil {
		s.logRecord(ctx, start, &req, nil, source, workerID, "rejected", err)
		return nil, err
	}

	res, err := prov.Translate(ctx, provider.Query{
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Text:           req.SourceText,
	})
	if err != nil {
		perr := &ProviderError{Provider: prov.Name(), Err: err}
		s.logRecord(ctx, start, &req, nil, source, workerID, "provider_error", perr)
		return nil, perr
	}

	c := s.builder.Build(req, res)
	env := &models.Envelope{Contract: c}

	// Append performs the final validation gate before any bytes are written.
	if err := s.ledger.Append(env); err != nil {
		atomic.AddInt64(&s.appendErrors, 1)
		s.logRecord(ctx, start, &req, &c, source, workerID, "append_error", err)
		return nil, err
	}
	atomic.AddInt64(&s.appendedTotal, 1)

	s.logRecord(ctx, start, &req, &c, source, workerID, "ok", nil)

	if s.notifier != nil {
		s.notifier.NotifyAppended(env)
	}

	slog.Info("Translation contract appended",
		"contract_id", c.ID,
		"req_id", req.ReqID,
		"trace_id", req.TraceID,
		"tenant_id", req.TenantID,
		"method", string(req.Method),
		"provider", prov.Name(),
		"duration_ms", time.Since(start).Milliseconds())

	return env, nil
}

// GetRecordLogs retrieves pipeline call records through the repository interface
func (s *PipelineService) GetRecordLogs(ctx context.Context, limit int) ([]*models.RecordLog, error) {
	return s.repo.Record().GetRecordLogs(ctx, limit)
}

// GetRepository returns the repository for use by other services
func (s *PipelineService) GetRepository() repository.Repository {
	return s.repo
}

// Ledger exposes the underlying store for read-back surfaces.
func (s *PipelineService) Ledger() *ledger.Store {
	return s.ledger
}

// AppendStats returns the running append counters: contracts durably
// written, and appends rejected at the final validation gate.
func (s *PipelineService) AppendStats() (appended, appendErrors int64) {
	return atomic.LoadInt64(&s.appendedTotal), atomic.LoadInt64(&s.appendErrors)
}

func (s *PipelineService) logRecord(ctx context.Context, start time.Time, req *models.TranslationRequest, c *models.TranslationContract, source, workerID, status string, callErr error) {
	rec := &models.RecordLog{
		Timestamp:      start,
		TraceID:        req.TraceID,
		ReqID:          req.ReqID,
		WorkerID:       workerID,
		Source:         source,
		Workflow:       req.Workflow,
		Flow:           req.Flow,
		TenantID:       req.TenantID,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Method:         string(req.Method),
		Translator:     req.Translator,
		InputLen:       len(req.SourceText),
		DurationMs:     float64(time.Since(start).Milliseconds()),
		Status:         status,
	}
	if c != nil {
		rec.ContractID = c.ID
		rec.Confidence = c.Confidence
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	if err := s.repo.Record().LogRecord(ctx, rec); err != nil {
		slog.Warn("Failed to log pipeline record", "req_id", req.ReqID, "error", err)
	}
}
